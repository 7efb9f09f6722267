package run

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/utils/errutil"
)

// InitializeLogger creates the run logs directory and configures logrus to
// write both to the master log file and to stderr.
func InitializeLogger(appName, runID string) (runDirectory string) {
	runDirectory, logFile, err := CreateRunDir(appName, runID)
	errutil.CheckWithContext(err, "Cannot create run logs directory")

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.100"})
	logrus.SetOutput(io.MultiWriter(logFile, os.Stderr))

	logrus.Infof("Working directory %q", runDirectory)
	logrus.Info("Starting run ", appName, " with id ", runID)

	return runDirectory
}
