package validate

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDependencyChecks(t *testing.T) {
	Convey("While checking measurement dependencies", t, func() {

		Convey("The monotonic timer check passes on supported platforms", func() {
			So(CheckTimer(), ShouldBeNil)
		})

		Convey("A resolvable target command passes", func() {
			So(CheckTargetCommand("sh -c 'exit 0'"), ShouldBeNil)
		})

		Convey("A missing target binary is reported as missing dependency", func() {
			err := CheckTargetCommand("definitely-not-a-binary-on-path {}")
			So(err, ShouldNotBeNil)
			So(err, ShouldHaveSameTypeAs, &DependencyMissingError{})
			So(err.Error(), ShouldContainSubstring, "definitely-not-a-binary-on-path")
		})

		Convey("An empty command template is rejected", func() {
			err := CheckTargetCommand("  ")
			So(err, ShouldHaveSameTypeAs, &DependencyMissingError{})
		})

		Convey("A relative path target is checked on disk", func() {
			err := CheckTargetCommand("./no/such/file --flag")
			So(err, ShouldHaveSameTypeAs, &DependencyMissingError{})
		})
	})
}
