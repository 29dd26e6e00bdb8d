// Package harvest runs harvesting passes over season slices: it walks
// every (year, gender, division) combination in a job spec, pulls the
// bracket through the data-mode router, and lands parsed games in the
// store, the Redis stream, and the websocket feed.
package harvest

import (
	"time"

	"github.com/fortuna/ceres/internal/bracket"
)

// Default season slice dimensions.
var (
	DefaultGenders   = []string{"Boys", "Girls"}
	DefaultDivisions = []string{"Div1", "Div2", "Div3", "Div4", "Div5"}
)

// JobSpec describes one harvesting pass.
type JobSpec struct {
	Years     []int    `json:"years"`
	Genders   []string `json:"genders,omitempty"`
	Divisions []string `json:"divisions,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// Slice is one (year, gender, division) combination.
type Slice struct {
	Year     int    `json:"year"`
	Gender   string `json:"gender"`
	Division string `json:"division"`
}

// normalized fills empty dimensions with the defaults.
func (s JobSpec) normalized() JobSpec {
	if len(s.Genders) == 0 {
		s.Genders = DefaultGenders
	}
	if len(s.Divisions) == 0 {
		s.Divisions = DefaultDivisions
	}
	return s
}

// Slices expands the spec into every season slice it covers, in
// year, gender, division order.
func (s JobSpec) Slices() []Slice {
	s = s.normalized()

	var slices []Slice
	for _, year := range s.Years {
		for _, gender := range s.Genders {
			for _, division := range s.Divisions {
				slices = append(slices, Slice{Year: year, Gender: gender, Division: division})
			}
		}
	}
	return slices
}

// SliceResult is the outcome of harvesting one slice.
type SliceResult struct {
	Found    bool          `json:"found"`
	Games    int           `json:"games"`
	Upserted int           `json:"upserted"`
	New      int           `json:"new"`
	Stats    bracket.Stats `json:"stats"`
}

// RunSummary aggregates a whole pass.
type RunSummary struct {
	Slices         int `json:"slices"`
	SlicesWithData int `json:"slices_with_data"`
	GamesFound     int `json:"games_found"`
	GamesUpserted  int `json:"games_upserted"`
	GamesNew       int `json:"games_new"`

	LinesParsed  int `json:"lines_parsed"`
	GamesSkipped int `json:"games_skipped"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRunStart(spec JobSpec, totalSlices int)
	OnSliceStart(slice Slice, index, total int)
	OnSliceDone(slice Slice, result SliceResult)
	OnRunComplete(summary RunSummary)
	OnRunError(err error)
}

// JobStatus is the lifecycle state of a queued harvest job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is a harvest pass tracked by the service queue.
type Job struct {
	ID         int        `json:"id"`
	Spec       JobSpec    `json:"spec"`
	Status     JobStatus  `json:"status"`
	Message    string     `json:"message,omitempty"`
	Current    int        `json:"current"`
	Total      int        `json:"total"`
	Summary    RunSummary `json:"summary"`
	Error      string     `json:"error,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// copy returns a shallow copy to prevent external mutation.
func (j *Job) copy() *Job {
	if j == nil {
		return nil
	}
	cpy := *j
	return &cpy
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	Active  *Job   `json:"active_job,omitempty"`
	Queued  int    `json:"queued"`
	History []*Job `json:"recent_jobs,omitempty"`
}
