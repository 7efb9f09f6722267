package executor

import (
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Local provides the execution environment on the local machine via
// exec.Command. It runs the command as the current user.
type Local struct {
}

// NewLocal returns a Local instance.
func NewLocal() Local {
	return Local{}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	stdoutFile, err := os.CreateTemp("", "taa_stdout_")
	if err != nil {
		return nil, errors.Wrap(err, "cannot create stdout file")
	}
	stderrFile, err := os.CreateTemp("", "taa_stderr_")
	if err != nil {
		stdoutFile.Close()
		os.Remove(stdoutFile.Name())
		return nil, errors.Wrap(err, "cannot create stderr file")
	}

	logrus.Debug("Starting ", command)

	cmd := exec.Command("sh", "-c", command)
	// Additional process group for the command and its children gives the
	// ability to kill the whole tree at once.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	if err := cmd.Start(); err != nil {
		stdoutFile.Close()
		stderrFile.Close()
		os.Remove(stdoutFile.Name())
		os.Remove(stderrFile.Name())
		return nil, errors.Wrapf(err, "cannot start command %q", command)
	}

	logrus.Debug("Started with pid ", cmd.Process.Pid)

	task := &localTaskHandle{
		cmd:        cmd,
		command:    command,
		stdoutFile: stdoutFile,
		stderrFile: stderrFile,
		waitDone:   make(chan struct{}),
	}

	// Wait for the local task in goroutine.
	go func() {
		// Wait() returns an error for non-zero exit; the process state is
		// inspected either way.
		cmd.Wait()

		waitStatus := cmd.ProcessState.Sys().(syscall.WaitStatus)

		task.mutex.Lock()
		if waitStatus.Exited() {
			task.exitCode = waitStatus.ExitStatus()
		} else {
			// Show what signal caused the termination.
			task.exitCode = -int(waitStatus.Signal())
		}
		task.mutex.Unlock()

		logrus.Debug(
			"Ended ", command,
			" with output in file: ", stdoutFile.Name(),
			" with err output in file: ", stderrFile.Name(),
			" with status code: ", task.exitCode)

		close(task.waitDone)
	}()

	return task, nil
}

// localTaskHandle implements the TaskHandle interface.
type localTaskHandle struct {
	cmd        *exec.Cmd
	command    string
	stdoutFile *os.File
	stderrFile *os.File

	waitDone chan struct{}
	mutex    sync.Mutex
	exitCode int
}

func (task *localTaskHandle) isTerminated() bool {
	select {
	case <-task.waitDone:
		return true
	default:
		return false
	}
}

// Stop terminates the local task. It signals the entire process group and
// escalates to SIGKILL when the group ignores the termination request.
func (task *localTaskHandle) Stop() error {
	if task.isTerminated() {
		return nil
	}

	// The kill syscall interprets a negated PID N as the process group N belongs to.
	pgid := task.cmd.Process.Pid
	logrus.Debug("Sending SIGTERM to process group ", pgid)
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		return errors.Wrapf(err, "cannot terminate process group %d", pgid)
	}

	select {
	case <-task.waitDone:
		return nil
	case <-time.After(5 * time.Second):
	}

	logrus.Debug("Sending SIGKILL to process group ", pgid)
	if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil {
		return errors.Wrapf(err, "cannot kill process group %d", pgid)
	}

	<-task.waitDone
	return nil
}

// Status returns a state of the task.
func (task *localTaskHandle) Status() TaskState {
	if task.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns an exit code. If task is not terminated it returns error.
func (task *localTaskHandle) ExitCode() (int, error) {
	if !task.isTerminated() {
		return 0, errors.Errorf("task %q is not terminated", task.command)
	}
	task.mutex.Lock()
	defer task.mutex.Unlock()
	return task.exitCode, nil
}

// StdoutFile returns a file handle to the task's stdout file.
func (task *localTaskHandle) StdoutFile() (*os.File, error) {
	if _, err := task.stdoutFile.Seek(0, 0); err != nil {
		return nil, errors.Wrap(err, "cannot seek stdout file")
	}
	return task.stdoutFile, nil
}

// StderrFile returns a file handle to the task's stderr file.
func (task *localTaskHandle) StderrFile() (*os.File, error) {
	if _, err := task.stderrFile.Seek(0, 0); err != nil {
		return nil, errors.Wrap(err, "cannot seek stderr file")
	}
	return task.stderrFile, nil
}

// Wait blocks until process is terminated or timeout appeared.
// Returns true when process terminates before timeout, otherwise false.
func (task *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-task.waitDone
		return true
	}

	select {
	case <-task.waitDone:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Clean closes the task's stdout & stderr files.
func (task *localTaskHandle) Clean() error {
	if err := task.stdoutFile.Close(); err != nil {
		return errors.Wrap(err, "cannot close stdout file")
	}
	if err := task.stderrFile.Close(); err != nil {
		return errors.Wrap(err, "cannot close stderr file")
	}
	return nil
}

// EraseOutput removes task's stdout & stderr files.
func (task *localTaskHandle) EraseOutput() error {
	if err := os.Remove(task.stdoutFile.Name()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "cannot remove stdout file")
	}
	if err := os.Remove(task.stderrFile.Name()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "cannot remove stderr file")
	}
	return nil
}
