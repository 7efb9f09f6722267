package run

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/conf"
)

const (
	// TypeEmpty is the default kind of metadata.
	TypeEmpty = ""
	// TypeFlags represents flag based configuration records.
	TypeFlags = "flags"
	// TypeEnviron represents environment variable records.
	TypeEnviron = "environ"
	// TypePlatform represents platform facts records.
	TypePlatform = "platform"
	// TypeVerdict represents analysis outcome records.
	TypeVerdict = "verdict"
)

// Metadata stores key/value records tagged with a kind, associated with the
// run that produced them.
type Metadata interface {
	Record(key string, value string, kind string) error
	RecordMap(metadata map[string]string, kind string) error
	GetByKind(kind string) (map[string]string, error)
	Clear() error
}

// NewDefault initializes a Metadata instance based on the metadata database
// flag. Returns an error on unknown database or failed connection.
func NewDefault(runID string) (Metadata, error) {
	switch db := conf.DefaultMetadataDB.Value(); db {
	case "cassandra":
		return NewCassandra(runID, DefaultCassandraConfig())
	case "influxdb":
		return NewInfluxDB(runID, DefaultInfluxDBConfig())
	default:
		return nil, errors.Errorf("unknown metadata database %q", db)
	}
}

// RecordRuntimeEnv stores the full runtime context of a run: the flag
// configuration, application environment variables, host identity and
// platform facts.
func RecordRuntimeEnv(metadata Metadata, runStart time.Time) error {
	if err := recordFlags(metadata); err != nil {
		return err
	}

	if err := recordEnv(metadata, conf.EnvironmentPrefix); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}
	err = metadata.RecordMap(map[string]string{"time": runStart.Format(time.RFC822Z), "host": hostname}, TypeEmpty)
	if err != nil {
		return err
	}

	return recordPlatformFacts(metadata)
}

func recordFlags(metadata Metadata) error {
	return metadata.RecordMap(conf.GetFlags(), TypeFlags)
}

// recordEnv adds all OS environment variables that start with prefix.
func recordEnv(metadata Metadata, prefix string) error {
	envMetadata := map[string]string{}
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			fields := strings.SplitN(env, "=", 2)
			envMetadata[fields[0]] = fields[1]
		}
	}
	return metadata.RecordMap(envMetadata, TypeEnviron)
}

func recordPlatformFacts(metadata Metadata) error {
	return metadata.RecordMap(GetPlatformFacts(), TypePlatform)
}
