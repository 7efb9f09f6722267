package target

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/executor"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/executor/mocks"
)

func TestBuildCommand(t *testing.T) {
	Convey("While rendering target command templates", t, func() {

		Convey("Placeholder is replaced with the quoted input", func() {
			So(BuildCommand("./check --secret {}", []byte("hunter2")),
				ShouldEqual, "./check --secret 'hunter2'")
		})

		Convey("Every placeholder occurrence is replaced", func() {
			So(BuildCommand("cmp {} {}", []byte("a")), ShouldEqual, "cmp 'a' 'a'")
		})

		Convey("Template without placeholder gets the input appended", func() {
			So(BuildCommand("./check", []byte("x")), ShouldEqual, "./check 'x'")
		})

		Convey("Single quotes in the input are escaped", func() {
			So(BuildCommand("./check {}", []byte("a'b")), ShouldEqual, `./check 'a'\''b'`)
		})
	})
}

func TestCommandBlock(t *testing.T) {
	Convey("While measuring an external target", t, func() {

		Convey("With the local executor the block reports real exit codes", func() {
			block := NewCommandBlock(executor.NewLocal(), "true", 5*time.Second)
			So(block([]byte("input")), ShouldBeNil)

			failing := NewCommandBlock(executor.NewLocal(), "exit 2", 5*time.Second)
			So(failing([]byte("input")), ShouldNotBeNil)
		})

		Convey("A target overrunning the timeout is stopped and the sample dropped", func() {
			task := new(mocks.TaskHandle)
			task.On("Wait", 10*time.Millisecond).Return(false)
			task.On("Stop").Return(nil)
			task.On("Clean").Return(nil)
			task.On("EraseOutput").Return(nil)

			exec := new(mocks.Executor)
			exec.On("Execute", mock.AnythingOfType("string")).Return(task, nil)

			block := NewCommandBlock(exec, "./stalls {}", 10*time.Millisecond)
			err := block([]byte("x"))

			So(err, ShouldEqual, analysis.ErrSampleTimedOut)
			task.AssertExpectations(t)
			exec.AssertExpectations(t)
		})
	})
}
