package conf

import (
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFlags(t *testing.T) {
	Convey("While defining flags of different types", t, func() {

		Convey("String flag returns default before parse and env value after", func() {
			flag := NewStringFlag("string_flag", "help", "def")
			defer flag.clear()

			So(flag.Value(), ShouldEqual, "def")

			os.Setenv(flag.envName(), "from_env")
			So(ParseEnv(), ShouldBeNil)
			So(flag.Value(), ShouldEqual, "from_env")
		})

		Convey("Int flag parses the environment value", func() {
			flag := NewIntFlag("int_flag", "help", 13)
			defer flag.clear()

			So(flag.Value(), ShouldEqual, 13)

			os.Setenv(flag.envName(), "42")
			So(ParseEnv(), ShouldBeNil)
			So(flag.Value(), ShouldEqual, 42)
		})

		Convey("Float flag parses the environment value", func() {
			flag := NewFloatFlag("float_flag", "help", 0.05)
			defer flag.clear()

			So(flag.Value(), ShouldEqual, 0.05)

			os.Setenv(flag.envName(), "0.01")
			So(ParseEnv(), ShouldBeNil)
			So(flag.Value(), ShouldEqual, 0.01)
		})

		Convey("Bool flag parses the environment value", func() {
			flag := NewBoolFlag("bool_flag", "help", false)
			defer flag.clear()

			So(flag.Value(), ShouldBeFalse)

			os.Setenv(flag.envName(), "true")
			So(ParseEnv(), ShouldBeNil)
			So(flag.Value(), ShouldBeTrue)
		})

		Convey("Duration flag parses the environment value", func() {
			flag := NewDurationFlag("duration_flag", "help", time.Second)
			defer flag.clear()

			So(flag.Value(), ShouldEqual, time.Second)

			os.Setenv(flag.envName(), "2m")
			So(ParseEnv(), ShouldBeNil)
			So(flag.Value(), ShouldEqual, 2*time.Minute)
		})

		Convey("Slice flag accumulates delimited values", func() {
			flag := NewSliceFlag("slice_flag", "help")
			defer flag.clear()

			os.Setenv(flag.envName(), "a,b,c")
			So(ParseEnv(), ShouldBeNil)
			So(flag.Value(), ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Redefining a flag with the same type and default returns the same instance", func() {
			first := NewStringFlag("dup_flag", "help", "x")
			second := NewStringFlag("dup_flag", "help", "x")
			defer first.clear()

			So(second, ShouldEqual, first)
		})
	})
}
