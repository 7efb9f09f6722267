package run

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/validate"
)

func TestExitCodeFor(t *testing.T) {
	Convey("While mapping analysis outcomes to exit codes", t, func() {

		Convey("Success maps to zero", func() {
			So(ExitCodeFor(nil), ShouldEqual, ExSuccess)
		})

		Convey("Configuration problems map to the usage code", func() {
			err := &analysis.InvalidConfigurationError{Reason: "iterations must be positive"}
			So(ExitCodeFor(err), ShouldEqual, ExUsage)
		})

		Convey("Too few usable classes map to the data code", func() {
			err := &analysis.InsufficientDataError{Reason: "one usable class"}
			So(ExitCodeFor(err), ShouldEqual, ExDataErr)
		})

		Convey("Target failures map to the software code", func() {
			err := &analysis.ExecutionFailureError{Class: "valid", Iteration: 3, Err: errors.New("exit 1")}
			So(ExitCodeFor(err), ShouldEqual, ExSoftware)
		})

		Convey("Missing dependencies map to the unavailable code", func() {
			err := &validate.DependencyMissingError{Dependency: "timer", Reason: "too coarse"}
			So(ExitCodeFor(err), ShouldEqual, ExUnavailable)
		})

		Convey("Wrapping does not change the mapping", func() {
			err := errors.Wrap(&analysis.InsufficientDataError{Reason: "all dropped"}, "analysis failed")
			So(ExitCodeFor(err), ShouldEqual, ExDataErr)
		})
	})
}
