// Package validate checks the local environment before any measurement
// begins. Hard failures mean the measurement dependencies are missing and
// analysis must not be attempted; soft findings only warn, since they degrade
// measurement quality without invalidating it.
package validate

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
)

const (
	// Timing differences worth detecting start in the microsecond range;
	// a coarser clock cannot resolve them.
	timerResolutionBound = 100 * time.Microsecond

	// The minimal value for the maximum number of open file descriptors that
	// is comfortable for command-mode measurement, which opens two output
	// files per sample.
	minimalNOFILERequirement = 1024
)

// DependencyMissingError reports a failed dependency check.
type DependencyMissingError struct {
	Dependency string
	Reason     string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("dependency %q missing: %s", e.Dependency, e.Reason)
}

// CheckTimer verifies that a monotonic high-resolution timer is available.
func CheckTimer() error {
	resolution := analysis.TimerResolution()
	logrus.Debugf("Measurement timer %q resolution: %s", analysis.TimerName(), resolution)

	if resolution > timerResolutionBound {
		return &DependencyMissingError{
			Dependency: "high-resolution timer",
			Reason: fmt.Sprintf("clock resolution %s is coarser than required %s",
				resolution, timerResolutionBound),
		}
	}
	return nil
}

// CheckTargetCommand verifies that the target command's binary is resolvable
// before sampling starts.
func CheckTargetCommand(template string) error {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return &DependencyMissingError{Dependency: "target command", Reason: "command template is empty"}
	}

	binary := fields[0]
	if strings.Contains(binary, "/") {
		if _, err := os.Stat(binary); err != nil {
			return &DependencyMissingError{Dependency: binary, Reason: err.Error()}
		}
		return nil
	}

	if _, err := exec.LookPath(binary); err != nil {
		return &DependencyMissingError{Dependency: binary, Reason: err.Error()}
	}
	return nil
}

// CheckCPUPowerGovernor warns about potential measurement variability when the
// powersave governor is used.
// governor path: https://www.kernel.org/doc/Documentation/cpu-freq/user-guide.txt
func CheckCPUPowerGovernor() {
	const cpu0GovernorFile = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor"
	if _, err := os.Stat(cpu0GovernorFile); os.IsNotExist(err) {
		logrus.Debugf("CPU power governor not readable - %q not available", cpu0GovernorFile)
		return
	}

	const performance = "performance"
	for i := 0; i < runtime.NumCPU(); i++ {
		cpuGovernorFile := fmt.Sprintf("/sys/devices/system/cpu/cpu%d/cpufreq/scaling_governor", i)
		governorBytes, err := os.ReadFile(cpuGovernorFile)
		if err != nil {
			logrus.Debugf("Could not read %q: %v", cpuGovernorFile, err)
			continue
		}
		governor := strings.TrimSuffix(string(governorBytes), "\n")
		logrus.Debugf("governor cpu%d: %q", i, governor)
		if governor != performance {
			logrus.Warnf("scaling_governor=%q (%q) should be set to 'performance' policy to mitigate wakeup penalty causing variability in timing measurements. You can change this value with 'cpupower frequency-set -g performance' as root.", governor, cpuGovernorFile)
		}
	}
}

// checkNOFILE warns if the number of maximum file descriptors opened by a
// process is lower than the minimum requested.
// The name NOFILE is based on "limits.conf" and definition from setrlimit.
func checkNOFILE(minimum uint64) {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		logrus.Debugf("Could not read RLIMIT_NOFILE: %v", err)
		return
	}
	if limit.Cur < minimum {
		logrus.Warnf("Maximum number of open file descriptors (%d) is lower than required (%d). You can change this value eg. ulimit -n %d or modifying /etc/security/limits.conf.", limit.Cur, minimum, minimum)
	}
}

// OS checks the local environment to help identify potential measurement
// issues. Soft findings only warn the user.
func OS() {
	CheckCPUPowerGovernor()
	checkNOFILE(minimalNOFILERequirement)
}

// Check runs every dependency check relevant to the configuration. The target
// command is only verified when command mode is in use (non-empty template).
// The first hard failure is returned; soft findings are logged either way.
func Check(targetCommand string) error {
	OS()

	if err := CheckTimer(); err != nil {
		return err
	}
	if targetCommand != "" {
		if err := CheckTargetCommand(targetCommand); err != nil {
			return err
		}
	}
	return nil
}
