// Package report renders verdicts for humans and flattens them into records
// for the storage uploaders.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/run"
)

// Report couples a verdict with the run that produced it.
type Report struct {
	Session run.Session
	Verdict analysis.Verdict
}

// Render writes the human readable form of the report: a per-class summary
// table followed by the verdict line.
func Render(w io.Writer, report Report) error {
	fmt.Fprintf(w, "Run %s\n\n", report.Session.Name)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Class", "Samples", "Dropped", "Median", "MAD", "Mean", "StdDev", "Min", "Max"})
	for _, class := range report.Verdict.Classes {
		table.Append([]string{
			class.Class,
			strconv.Itoa(class.Count),
			strconv.Itoa(class.Dropped),
			class.Median.String(),
			class.MAD.String(),
			class.Mean.String(),
			class.StdDev.String(),
			class.Min.String(),
			class.Max.String(),
		})
	}
	table.Render()

	if len(report.Verdict.FailedClasses) > 0 {
		classes := make([]string, 0, len(report.Verdict.FailedClasses))
		for class := range report.Verdict.FailedClasses {
			classes = append(classes, class)
		}
		sort.Strings(classes)
		for _, class := range classes {
			fmt.Fprintf(w, "class %q excluded: %s\n", class, report.Verdict.FailedClasses[class])
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n", report.Verdict.String())
	return err
}

// Write renders the report to the given path, or to stdout when the path is
// empty.
func Write(path string, report Report) error {
	if path == "" {
		return Render(os.Stdout, report)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create report file %q", path)
	}
	defer file.Close()

	if err := Render(file, report); err != nil {
		return errors.Wrapf(err, "cannot write report to %q", path)
	}
	return nil
}
