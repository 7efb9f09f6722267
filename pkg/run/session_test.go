package run

import (
	"os"
	"path"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSession(t *testing.T) {
	Convey("While creating run sessions", t, func() {

		Convey("Each session gets a unique id embedded in its name", func() {
			first := NewSession()
			second := NewSession()

			So(first.ID, ShouldNotBeEmpty)
			So(first.ID, ShouldNotEqual, second.ID)
			So(first.Name, ShouldEndWith, first.ID)
		})

		Convey("The run directory is created with a master log inside", func() {
			tmp, err := os.MkdirTemp("", "run_dir_test_")
			So(err, ShouldBeNil)
			defer os.RemoveAll(tmp)

			wd, err := os.Getwd()
			So(err, ShouldBeNil)
			So(os.Chdir(tmp), ShouldBeNil)
			defer os.Chdir(wd)

			session := NewSession()
			runDir, logFile, err := CreateRunDir("analyzer-test", session.ID)
			So(err, ShouldBeNil)
			defer logFile.Close()

			So(runDir, ShouldContainSubstring, session.ID)
			_, err = os.Stat(path.Join(runDir, "master.log"))
			So(err, ShouldBeNil)
		})
	})
}

func TestPlatformFacts(t *testing.T) {
	Convey("While gathering platform facts", t, func() {
		facts := GetPlatformFacts()

		Convey("CPU count, OS and architecture are always present", func() {
			So(facts[CPUCountKey], ShouldNotBeEmpty)
			So(facts[OSKey], ShouldNotBeEmpty)
			So(facts[ArchKey], ShouldNotBeEmpty)
		})

		Convey("Timer resolution is reported as a duration", func() {
			So(facts[TimerResolutionKey], ShouldNotBeEmpty)
		})
	})
}
