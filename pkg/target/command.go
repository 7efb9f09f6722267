// Package target builds measurable blocks out of external commands, so the
// statistical core stays decoupled from how the measured callable is obtained.
package target

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/executor"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/utils/errcollection"
)

// InputPlaceholder marks the spot in a command template where the secret
// input of the sampled class is substituted.
const InputPlaceholder = "{}"

// BuildCommand renders the command for one invocation. The placeholder is
// replaced with the shell-quoted class input; a template without placeholder
// gets the input appended as the last argument.
func BuildCommand(template string, input []byte) string {
	quoted := shellQuote(string(input))
	if strings.Contains(template, InputPlaceholder) {
		return strings.ReplaceAll(template, InputPlaceholder, quoted)
	}
	return template + " " + quoted
}

// NewCommandBlock returns a block which launches the target command for every
// invocation. A command overrunning the timeout is killed and the sample is
// reported as dropped; a non-zero exit fails the sample.
func NewCommandBlock(exec executor.Executor, template string, timeout time.Duration) analysis.Block {
	return func(input []byte) (err error) {
		task, err := exec.Execute(BuildCommand(template, input))
		if err != nil {
			return errors.Wrapf(err, "cannot launch target %q", template)
		}
		defer func() {
			var cleanup errcollection.ErrorCollection
			cleanup.Add(task.Clean())
			cleanup.Add(task.EraseOutput())
			if cleanupErr := cleanup.GetErrIfAny(); cleanupErr != nil && err == nil {
				err = errors.Wrap(cleanupErr, "cannot clean up after target")
			}
		}()

		if !task.Wait(timeout) {
			if err := task.Stop(); err != nil {
				return errors.Wrap(err, "cannot stop target overrunning sample timeout")
			}
			return analysis.ErrSampleTimedOut
		}

		exitCode, err := task.ExitCode()
		if err != nil {
			return errors.Wrap(err, "cannot read target exit code")
		}
		if exitCode != 0 {
			return errors.Errorf("target exited with code %d", exitCode)
		}
		return nil
	}
}

// shellQuote wraps the value in single quotes so the shell passes it through
// verbatim. Embedded single quotes are closed, escaped and reopened.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
