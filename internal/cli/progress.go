package cli

import (
	"time"

	"github.com/schollz/progressbar/v3"
)

const summaryRounding = time.Millisecond

// progressReporter renders per-file extraction progress. In quiet mode all
// calls are no-ops.
type progressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newProgressReporter(quiet bool) *progressReporter {
	return &progressReporter{quiet: quiet}
}

// report is shaped to plug into ingest.Ingestor.Progress. The bar is created
// lazily on the first call because the file total is unknown until the walk
// completes.
func (p *progressReporter) report(done, total int) {
	if p.quiet {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Extracting metadata"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
