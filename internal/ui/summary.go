package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gaurav-prasanna/hexovault/core/pipeline"
)

// Summary prints one line per failed or skipped document followed by the
// batch totals.
func Summary(w io.Writer, result *pipeline.Result, styles *Styles) error {
	var b strings.Builder
	for _, o := range result.Outcomes {
		switch o.Status {
		case pipeline.StatusFailed:
			fmt.Fprintf(&b, "%s %s: %v\n", styles.Failure.Render("✗"), styles.Path.Render(o.Source.Location), o.Err)
		case pipeline.StatusSkipped:
			fmt.Fprintf(&b, "%s %s %s\n", styles.Skipped.Render("-"), styles.Path.Render(o.Path), styles.Dim.Render("(exists, use --force)"))
		}
	}

	s := result.Stats
	mark := styles.Success.Render("✓")
	if s.Failed > 0 {
		mark = styles.Failure.Render("✗")
	}
	fmt.Fprintf(&b, "%s %s %s\n",
		mark,
		styles.Title.Render(fmt.Sprintf("%d of %d notes written", s.Written, s.Discovered)),
		styles.Dim.Render(fmt.Sprintf("(%d skipped, %d failed, %s)", s.Skipped, s.Failed, s.Elapsed.Round(time.Millisecond))),
	)

	_, err := io.WriteString(w, b.String())
	return err
}
