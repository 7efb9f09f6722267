package report

import (
	"bytes"
	"os"
	"path"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/run"
)

func exampleReport() Report {
	return Report{
		Session: run.Session{ID: "run-id", Name: "2026-01-01_run-id"},
		Verdict: analysis.Verdict{
			Statistic:     0.001,
			EffectSize:    0.8,
			Threshold:     0.05,
			Vulnerable:    true,
			MostSeparated: [2]string{"valid", "invalid"},
			Classes: []analysis.ClassSummary{
				{Class: "valid", Count: 100, Median: 50 * time.Microsecond, Mean: 52 * time.Microsecond},
				{Class: "invalid", Count: 100, Dropped: 2, Median: 2 * time.Millisecond, Mean: 2 * time.Millisecond},
			},
			FailedClasses: map[string]string{"broken": "target exited with code 1"},
		},
	}
}

func TestRender(t *testing.T) {
	Convey("While rendering a report", t, func() {
		var buffer bytes.Buffer
		So(Render(&buffer, exampleReport()), ShouldBeNil)
		rendered := buffer.String()

		Convey("Every class appears in the summary table", func() {
			So(rendered, ShouldContainSubstring, "valid")
			So(rendered, ShouldContainSubstring, "invalid")
			So(rendered, ShouldContainSubstring, "MEDIAN")
		})

		Convey("The verdict line names the most separated pair", func() {
			So(rendered, ShouldContainSubstring, "VULNERABLE")
			So(rendered, ShouldContainSubstring, `"valid" vs "invalid"`)
		})

		Convey("Excluded classes are listed with the reason", func() {
			So(rendered, ShouldContainSubstring, `class "broken" excluded`)
			So(rendered, ShouldContainSubstring, "target exited with code 1")
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("While writing a report to a file", t, func() {
		tmp, err := os.MkdirTemp("", "report_test_")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tmp)

		reportPath := path.Join(tmp, "report.txt")
		So(Write(reportPath, exampleReport()), ShouldBeNil)

		content, err := os.ReadFile(reportPath)
		So(err, ShouldBeNil)
		So(string(content), ShouldContainSubstring, "VULNERABLE")
	})
}

func TestNewRecord(t *testing.T) {
	Convey("While flattening a report into a storage record", t, func() {
		record := NewRecord(exampleReport())

		Convey("Run identity and verdict fields are carried over", func() {
			So(record.RunID, ShouldEqual, "run-id")
			So(record.Vulnerable, ShouldBeTrue)
			So(record.MostSeparated, ShouldEqual, "valid vs invalid")
		})

		Convey("Class durations are flattened to nanoseconds", func() {
			So(record.Classes, ShouldHaveLength, 2)
			So(record.Classes[0].MedianNs, ShouldEqual, int64(50*time.Microsecond))
			So(record.Classes[1].Dropped, ShouldEqual, 2)
			So(record.Classes[1].RunID, ShouldEqual, "run-id")
		})
	})
}
