package harvest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/ceres/internal/ingest/wiaa"
	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/publisher"
	"github.com/fortuna/ceres/internal/store"
	"github.com/fortuna/ceres/internal/store/repository"
)

// Runner executes harvest specs against the bracket client. The store,
// publisher, and broadcast hooks are all optional; a runner with none
// of them just parses and reports, which is what dry runs and the
// fixture tests use.
type Runner struct {
	client    *wiaa.Client
	games     *repository.GameRepository
	runs      *repository.RunRepository
	pub       *publisher.Publisher
	broadcast func(*store.Game)
	log       *logging.Logger
}

// NewRunner constructs a runner.
func NewRunner(client *wiaa.Client, games *repository.GameRepository, runs *repository.RunRepository, pub *publisher.Publisher, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Default()
	}
	return &Runner{
		client: client,
		games:  games,
		runs:   runs,
		pub:    pub,
		log:    log.Named("harvest"),
	}
}

// SetBroadcast registers a hook called for every newly inserted game.
func (r *Runner) SetBroadcast(fn func(*store.Game)) {
	r.broadcast = fn
}

// Run executes one harvesting pass. Individual slice failures are
// tallied and skipped; only caller cancellation aborts the pass.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (*RunSummary, error) {
	spec = spec.normalized()
	if len(spec.Years) == 0 {
		return nil, fmt.Errorf("harvest spec has no years")
	}

	slices := spec.Slices()
	summary := &RunSummary{Slices: len(slices)}
	if reporter != nil {
		reporter.OnRunStart(spec, len(slices))
	}

	record := r.startRunRecord(ctx, spec, len(slices))

	for idx, slice := range slices {
		if err := ctx.Err(); err != nil {
			r.failRunRecord(record, err)
			if reporter != nil {
				reporter.OnRunError(err)
			}
			return summary, err
		}

		if reporter != nil {
			reporter.OnSliceStart(slice, idx, len(slices))
		}

		result, err := r.harvestSlice(ctx, spec, slice)
		if err != nil {
			r.failRunRecord(record, err)
			if reporter != nil {
				reporter.OnRunError(err)
			}
			return summary, err
		}

		if result.Found {
			summary.SlicesWithData++
		}
		summary.GamesFound += result.Games
		summary.GamesUpserted += result.Upserted
		summary.GamesNew += result.New
		summary.LinesParsed += result.Stats.TotalLines
		summary.GamesSkipped += result.Stats.Skipped()

		if reporter != nil {
			reporter.OnSliceDone(slice, result)
		}
	}

	r.client.LogHealth()
	r.completeRunRecord(record, summary)

	if reporter != nil {
		reporter.OnRunComplete(*summary)
	}
	return summary, nil
}

// harvestSlice pulls and lands one season slice.
func (r *Runner) harvestSlice(ctx context.Context, spec JobSpec, slice Slice) (SliceResult, error) {
	var result SliceResult

	harvested, err := r.client.HarvestSeason(ctx, slice.Year, slice.Gender, slice.Division)
	if err != nil {
		return result, err
	}
	if harvested == nil {
		r.log.Debug("no bracket for slice",
			"year", slice.Year, "gender", slice.Gender, "division", slice.Division)
		return result, nil
	}

	result.Found = true
	result.Games = len(harvested.Games)
	result.Stats = harvested.Stats

	if spec.DryRun || r.games == nil {
		return result, nil
	}

	for i := range harvested.Games {
		rec := store.NewGameRecord(harvested.Games[i])

		inserted, err := r.games.Upsert(ctx, rec)
		if err != nil {
			r.log.Warn("upsert failed, skipping game",
				"external_id", rec.ExternalID, "error", err)
			continue
		}
		result.Upserted++
		if inserted {
			result.New++
		}

		if r.pub != nil {
			if err := r.pub.PublishGame(ctx, rec); err != nil {
				r.log.Warn("publish failed", "external_id", rec.ExternalID, "error", err)
			}
		}
		if inserted && r.broadcast != nil {
			r.broadcast(rec)
		}
	}

	return result, nil
}

func (r *Runner) startRunRecord(ctx context.Context, spec JobSpec, slices int) *store.HarvestRun {
	if r.runs == nil || spec.DryRun {
		return nil
	}

	record := &store.HarvestRun{
		Mode:            r.mode(),
		Years:           joinInts(spec.Years),
		Genders:         strings.Join(spec.Genders, ","),
		Divisions:       strings.Join(spec.Divisions, ","),
		SlicesRequested: slices,
	}
	if err := r.runs.Create(ctx, record); err != nil {
		r.log.Warn("recording harvest run failed", "error", err)
		return nil
	}
	return record
}

func (r *Runner) completeRunRecord(record *store.HarvestRun, summary *RunSummary) {
	if record == nil {
		return
	}
	record.SlicesWithData = summary.SlicesWithData
	record.GamesFound = summary.GamesFound
	record.GamesUpserted = summary.GamesUpserted

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.runs.Complete(ctx, record); err != nil {
		r.log.Warn("completing harvest run failed", "run_id", record.RunID, "error", err)
	}
	if r.pub != nil {
		if err := r.pub.PublishRun(ctx, record); err != nil {
			r.log.Warn("publishing harvest run failed", "run_id", record.RunID, "error", err)
		}
	}
}

func (r *Runner) failRunRecord(record *store.HarvestRun, cause error) {
	if record == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.runs.Fail(ctx, record, cause); err != nil {
		r.log.Warn("failing harvest run failed", "run_id", record.RunID, "error", err)
	}
}

func (r *Runner) mode() string {
	return string(r.client.Mode())
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
