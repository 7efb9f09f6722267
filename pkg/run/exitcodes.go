package run

import (
	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/validate"
)

// Exit codes follow the sysexits convention so scripted callers can
// distinguish failure modes without parsing output.
const (
	// ExSuccess means the analysis completed and a verdict was produced.
	ExSuccess = 0
	// ExUsage means the configuration or command line was invalid.
	ExUsage = 64
	// ExDataErr means too few usable classes survived sampling to decide.
	ExDataErr = 65
	// ExUnavailable means a measurement dependency is missing.
	ExUnavailable = 69
	// ExSoftware means the measured target failed during sampling.
	ExSoftware = 70
)

// ExitCodeFor maps an analysis error to its exit code. A nil error maps to
// ExSuccess.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExSuccess
	}

	switch errors.Cause(err).(type) {
	case *analysis.InvalidConfigurationError:
		return ExUsage
	case *analysis.InsufficientDataError:
		return ExDataErr
	case *analysis.ExecutionFailureError:
		return ExSoftware
	case *validate.DependencyMissingError:
		return ExUnavailable
	}
	return ExSoftware
}
