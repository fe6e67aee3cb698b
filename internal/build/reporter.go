package build

import "github.com/fastertools/ftl-cli/internal/progress"

// progressReporter adapts *progress.Reporter to Reporter. Kept in its own
// file so the rest of the package stays decoupled from progress for
// testing (build_test.go supplies its own fake Reporter instead).
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
