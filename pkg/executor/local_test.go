package executor

import (
	"io"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// TestLocal tests the execution of process on local machine.
func TestLocal(t *testing.T) {
	Convey("While using Local Executor", t, func() {
		l := NewLocal()

		Convey("When command `echo output` is executed", func() {
			task, err := l.Execute("echo output")
			So(err, ShouldBeNil)

			defer task.EraseOutput()
			defer task.Clean()

			Convey("Task should terminate with exit code 0 and captured stdout", func() {
				terminated := task.Wait(5 * time.Second)
				So(terminated, ShouldBeTrue)
				So(task.Status(), ShouldEqual, TERMINATED)

				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldEqual, 0)

				stdoutFile, err := task.StdoutFile()
				So(err, ShouldBeNil)
				output, err := io.ReadAll(stdoutFile)
				So(err, ShouldBeNil)
				So(strings.TrimSpace(string(output)), ShouldEqual, "output")
			})
		})

		Convey("When command exits with a non-zero code", func() {
			task, err := l.Execute("exit 3")
			So(err, ShouldBeNil)

			defer task.EraseOutput()
			defer task.Clean()

			So(task.Wait(5*time.Second), ShouldBeTrue)
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 3)
		})

		Convey("When blocking sleep command is executed", func() {
			task, err := l.Execute("sleep 60")
			So(err, ShouldBeNil)

			defer task.EraseOutput()
			defer task.Clean()

			Convey("Wait with a short timeout should exceed while task is running", func() {
				So(task.Wait(10*time.Millisecond), ShouldBeFalse)
				So(task.Status(), ShouldEqual, RUNNING)

				_, err := task.ExitCode()
				So(err, ShouldNotBeNil)

				So(task.Stop(), ShouldBeNil)
			})

			Convey("Stop should terminate the task with the termination signal", func() {
				So(task.Stop(), ShouldBeNil)
				So(task.Status(), ShouldEqual, TERMINATED)

				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				// SIGTERM is reported as negated signal number.
				So(exitCode, ShouldEqual, -15)
			})
		})
	})
}
