package run

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
)

const (
	// CPUModelNameKey defines a key in the platform facts map.
	CPUModelNameKey = "cpu_model"
	// CPUCountKey defines a key in the platform facts map.
	CPUCountKey = "cpu_count"
	// KernelVersionKey defines a key in the platform facts map.
	KernelVersionKey = "kernel_version"
	// PowerGovernorKey defines a key in the platform facts map.
	PowerGovernorKey = "power_governor"
	// TimerResolutionKey defines a key in the platform facts map.
	TimerResolutionKey = "timer_resolution"
	// OSKey defines a key in the platform facts map.
	OSKey = "os"
	// ArchKey defines a key in the platform facts map.
	ArchKey = "arch"
)

// GetPlatformFacts returns a map of strings describing the host the samples
// were taken on. If a fact could not be retrieved its value is an empty
// string.
func GetPlatformFacts() map[string]string {
	facts := make(map[string]string)

	item, err := CPUModelName()
	if err != nil {
		logrus.Warnf("GetPlatformFacts: failed to get %s. Skipping. Error: %s", CPUModelNameKey, err.Error())
	}
	facts[CPUModelNameKey] = item

	item, err = KernelVersion()
	if err != nil {
		logrus.Warnf("GetPlatformFacts: failed to get %s. Skipping. Error: %s", KernelVersionKey, err.Error())
	}
	facts[KernelVersionKey] = item

	item, err = PowerGovernor()
	if err != nil {
		logrus.Warnf("GetPlatformFacts: failed to get %s. Skipping. Error: %s", PowerGovernorKey, err.Error())
	}
	facts[PowerGovernorKey] = item

	facts[CPUCountKey] = strconv.Itoa(runtime.NumCPU())
	facts[TimerResolutionKey] = analysis.TimerResolution().String()
	facts[OSKey] = runtime.GOOS
	facts[ArchKey] = runtime.GOARCH

	return facts
}

// CPUModelName reads the model name of the first CPU from procfs.
func CPUModelName() (string, error) {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return "", errors.Wrap(err, "cannot open /proc/cpuinfo")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "model name") {
			fields := strings.SplitN(line, ":", 2)
			if len(fields) == 2 {
				return strings.TrimSpace(fields[1]), nil
			}
		}
	}
	return "", errors.New("model name not found in /proc/cpuinfo")
}

// KernelVersion reads the running kernel release from procfs.
func KernelVersion() (string, error) {
	release, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return "", errors.Wrap(err, "cannot read kernel release")
	}
	return strings.TrimSpace(string(release)), nil
}

// PowerGovernor returns the scaling governor active on each CPU, aggregated
// as "governor:cpu,cpu" groups.
func PowerGovernor() (string, error) {
	governors := make(map[string][]string)
	for i := 0; i < runtime.NumCPU(); i++ {
		governorFile := fmt.Sprintf("/sys/devices/system/cpu/cpu%d/cpufreq/scaling_governor", i)
		data, err := os.ReadFile(governorFile)
		if err != nil {
			return "", errors.Wrapf(err, "cannot read %q", governorFile)
		}
		governor := strings.TrimSpace(string(data))
		governors[governor] = append(governors[governor], strconv.Itoa(i))
	}

	groups := []string{}
	for governor, cpus := range governors {
		groups = append(groups, governor+":"+strings.Join(cpus, ","))
	}
	return strings.Join(groups, ";"), nil
}
