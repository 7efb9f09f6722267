// Package run carries the per-invocation plumbing around the statistical
// core: run identity, log and output directories, and metadata persistence.
package run

import (
	"os"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/utils/uuid"
)

// Session identifies a single analysis run. Every metadata record and report
// row is tagged with the session ID so runs stay distinguishable in storage.
type Session struct {
	ID   string
	Name string
}

// NewSession generates a fresh run identity.
func NewSession() Session {
	id := uuid.New()
	return Session{
		ID:   id,
		Name: time.Now().Format("2006-01-02T15h04m05s_") + id,
	}
}

// CreateRunDir creates the directory layout for a run under the current
// working directory and opens the master log file inside it.
func CreateRunDir(appName, runID string) (runDirectory string, logFile *os.File, err error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, errors.Wrap(err, "cannot get working directory")
	}

	runDirectory = path.Join(wd, appName, runID)
	err = os.MkdirAll(runDirectory, 0777)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot create run directory %q", runDirectory)
	}

	masterLogFilename := path.Join(runDirectory, "master.log")
	logFile, err = os.OpenFile(masterLogFilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot open log file %q", masterLogFilename)
	}

	return runDirectory, logFile, nil
}
