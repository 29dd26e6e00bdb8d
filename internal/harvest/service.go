package harvest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/ceres/internal/logging"
)

const (
	queueCapacity = 16
	historyLimit  = 10
)

// Service queues harvest jobs and executes them one at a time on a
// background worker. It backs the REST trigger endpoint.
type Service struct {
	runner *Runner
	log    *logging.Logger

	mu      sync.Mutex
	nextID  int
	active  *Job
	history []*Job

	queue  chan *Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService constructs a Service. Call Start to launch the worker.
func NewService(runner *Runner, log *logging.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		runner: runner,
		log:    log.Named("harvest.service"),
		queue:  make(chan *Job, queueCapacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the background worker loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops the worker and waits for the in-flight job.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue queues a harvest pass. It fails when the spec names no years
// or the queue is full.
func (s *Service) Enqueue(spec JobSpec) (*Job, error) {
	if len(spec.Years) == 0 {
		return nil, fmt.Errorf("harvest spec has no years")
	}

	s.mu.Lock()
	s.nextID++
	job := &Job{
		ID:         s.nextID,
		Spec:       spec,
		Status:     JobQueued,
		Message:    "queued",
		Total:      len(spec.Slices()),
		EnqueuedAt: time.Now(),
	}
	s.mu.Unlock()

	select {
	case s.queue <- job:
	default:
		return nil, fmt.Errorf("harvest queue full")
	}

	s.log.Info("harvest job queued", "job_id", job.ID, "slices", job.Total)
	return job.copy(), nil
}

// Status returns the active job, queue depth, and recent history.
func (s *Service) Status() StatusSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := StatusSummary{
		Active: s.active.copy(),
		Queued: len(s.queue),
	}
	for _, j := range s.history {
		summary.History = append(summary.History, j.copy())
	}
	return summary
}

func (s *Service) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case job := <-s.queue:
			s.execute(job)
		}
	}
}

func (s *Service) execute(job *Job) {
	now := time.Now()
	s.mu.Lock()
	job.Status = JobRunning
	job.Message = "running"
	job.StartedAt = &now
	s.active = job
	s.mu.Unlock()

	summary, err := s.runner.Run(s.ctx, job.Spec, &jobReporter{service: s, job: job})

	finished := time.Now()
	s.mu.Lock()
	job.FinishedAt = &finished
	if summary != nil {
		job.Summary = *summary
	}
	if err != nil {
		job.Status = JobFailed
		job.Message = "failed"
		job.Error = err.Error()
	} else {
		job.Status = JobCompleted
		job.Message = "completed"
	}

	s.active = nil
	s.history = append([]*Job{job}, s.history...)
	if len(s.history) > historyLimit {
		s.history = s.history[:historyLimit]
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("harvest job failed", "job_id", job.ID, "error", err)
		return
	}
	s.log.Info("harvest job complete",
		"job_id", job.ID,
		"games_found", job.Summary.GamesFound,
		"games_upserted", job.Summary.GamesUpserted)
}

// jobReporter mirrors runner progress into the queued job under the
// service lock.
type jobReporter struct {
	service *Service
	job     *Job
}

func (r *jobReporter) OnRunStart(spec JobSpec, totalSlices int) {
	r.service.mu.Lock()
	defer r.service.mu.Unlock()
	r.job.Total = totalSlices
}

func (r *jobReporter) OnSliceStart(slice Slice, index, total int) {
	r.service.mu.Lock()
	defer r.service.mu.Unlock()
	r.job.Current = index
	r.job.Message = fmt.Sprintf("harvesting %d %s %s (%d/%d)",
		slice.Year, slice.Gender, slice.Division, index+1, total)
}

func (r *jobReporter) OnSliceDone(slice Slice, result SliceResult) {
	r.service.mu.Lock()
	defer r.service.mu.Unlock()
	r.job.Current++
	r.job.Summary.GamesFound += result.Games
	r.job.Summary.GamesUpserted += result.Upserted
	r.job.Summary.GamesNew += result.New
}

func (r *jobReporter) OnRunComplete(summary RunSummary) {
	r.service.mu.Lock()
	defer r.service.mu.Unlock()
	r.job.Summary = summary
	r.job.Current = r.job.Total
}

func (r *jobReporter) OnRunError(err error) {
	r.service.mu.Lock()
	defer r.service.mu.Unlock()
	r.job.Error = err.Error()
}
