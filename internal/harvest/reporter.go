package harvest

import (
	"github.com/fortuna/ceres/internal/logging"
)

// LogReporter narrates a harvest pass through the logger. The one-shot
// CLI uses it for console progress.
type LogReporter struct {
	log *logging.Logger
}

// NewLogReporter creates a reporter writing to log.
func NewLogReporter(log *logging.Logger) *LogReporter {
	if log == nil {
		log = logging.Default()
	}
	return &LogReporter{log: log}
}

func (r *LogReporter) OnRunStart(spec JobSpec, totalSlices int) {
	r.log.Info("harvest starting",
		"years", spec.Years, "genders", spec.Genders, "divisions", spec.Divisions,
		"slices", totalSlices, "dry_run", spec.DryRun)
}

func (r *LogReporter) OnSliceStart(slice Slice, index, total int) {
	r.log.Info("harvesting slice",
		"year", slice.Year, "gender", slice.Gender, "division", slice.Division,
		"slice", index+1, "of", total)
}

func (r *LogReporter) OnSliceDone(slice Slice, result SliceResult) {
	if !result.Found {
		r.log.Info("no bracket posted",
			"year", slice.Year, "gender", slice.Gender, "division", slice.Division)
		return
	}
	r.log.Info("slice harvested",
		"year", slice.Year, "gender", slice.Gender, "division", slice.Division,
		"games", result.Games, "upserted", result.Upserted, "new", result.New,
		"lines", result.Stats.TotalLines, "skipped", result.Stats.Skipped())
}

func (r *LogReporter) OnRunComplete(summary RunSummary) {
	r.log.Info("harvest complete",
		"slices", summary.Slices,
		"slices_with_data", summary.SlicesWithData,
		"games_found", summary.GamesFound,
		"games_upserted", summary.GamesUpserted,
		"games_new", summary.GamesNew,
		"games_skipped", summary.GamesSkipped)
}

func (r *LogReporter) OnRunError(err error) {
	r.log.Error("harvest failed", "error", err)
}
