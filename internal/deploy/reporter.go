package deploy

import "github.com/fastertools/ftl-cli/internal/progress"

// progressReporter adapts *progress.Reporter to Reporter, mirroring
// internal/build's adapter so both pipelines share one spinner-per-task
// convention.
type progressReporter struct {
	r *progress.Reporter
}

// NewProgressReporter wraps a concrete progress.Reporter for production use.
func NewProgressReporter(r *progress.Reporter) Reporter {
	return progressReporter{r: r}
}

func (p progressReporter) NewLine(prefix, initialMessage string) Line {
	return p.r.NewLine(prefix, initialMessage)
}
