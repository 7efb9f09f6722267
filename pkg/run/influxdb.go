package run

import (
	"fmt"
	"strings"

	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/conf"
)

const influxMetadataMeasurement = "metadata"

// InfluxDBConfig holds connection settings for the InfluxDB metadata store.
type InfluxDBConfig struct {
	httpConfig client.HTTPConfig
	dbName     string
}

// InfluxDB keeps the session alive, holds the active configuration and the
// run id to tag the metadata with.
type InfluxDB struct {
	runID   string
	session client.Client
	config  InfluxDBConfig
}

// DefaultInfluxDBConfig applies the InfluxDB settings from the command line
// flags and environment variables.
func DefaultInfluxDBConfig() InfluxDBConfig {
	return InfluxDBConfig{
		dbName: conf.InfluxDBName.Value(),
		httpConfig: client.HTTPConfig{
			Addr:               fmt.Sprintf("http://%s:%d", conf.InfluxDBAddress.Value(), conf.InfluxDBPort.Value()),
			Password:           conf.InfluxDBPassword.Value(),
			Username:           conf.InfluxDBUsername.Value(),
			InsecureSkipVerify: conf.InfluxDBInsecureSkipVerify.Value(),
		},
	}
}

// NewInfluxDB returns the Metadata helper from a run id and configuration.
func NewInfluxDB(runID string, config InfluxDBConfig) (Metadata, error) {
	var err error

	metadata := &InfluxDB{
		runID:  runID,
		config: config,
	}

	metadata.session, err = client.NewHTTPClient(metadata.config.httpConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create influx client for run %s", runID)
	}

	if conf.InfluxDBCreateDatabase.Value() {
		response, err := metadata.session.Query(client.Query{
			Command:  fmt.Sprintf("CREATE DATABASE %s", config.dbName),
			Database: ""})
		if err != nil {
			return nil, errors.Wrapf(err, "cannot create influx database for run %s", runID)
		}
		if response.Error() != nil {
			return nil, errors.Wrapf(response.Error(), "response contains error for run %s", runID)
		}
	}

	return metadata, nil
}

// influxDBStoreMap writes metadata to the database with tags attached to it.
// Values are written one point per map, no aggregation is done.
func influxDBStoreMap(m *InfluxDB, metadata map[string]string, kind string) error {
	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: m.config.dbName})
	if err != nil {
		return errors.Wrapf(err, "creation of batch points for InfluxDB failed for metadata kind %q", kind)
	}

	tags := map[string]string{"kind": kind, "run_id": m.runID}

	fields := make(map[string]interface{})
	for key := range metadata {
		fields[key] = metadata[key]
	}
	point, err := client.NewPoint(influxMetadataMeasurement, tags, fields)
	if err != nil {
		return errors.Wrapf(err, "cannot create new point, kind %q", kind)
	}

	batchPoints.AddPoint(point)

	err = m.session.Write(batchPoints)
	if err != nil {
		return errors.Wrapf(err, "cannot publish metadata of kind %q", kind)
	}
	return nil
}

// Record stores a key and value and associates them with the run id.
func (m *InfluxDB) Record(key, value, kind string) error {
	metadata := map[string]string{}
	metadata[key] = value
	return influxDBStoreMap(m, metadata, kind)
}

// RecordMap stores a key and value map and associates it with the run id.
func (m *InfluxDB) RecordMap(metadata map[string]string, kind string) error {
	return influxDBStoreMap(m, metadata, kind)
}

// GetByKind retrieves a single kind from the database. When duplicates are
// found the last one wins.
func (m *InfluxDB) GetByKind(kind string) (map[string]string, error) {
	metadata := make(map[string]string)
	cmd := fmt.Sprintf("SELECT last(*) FROM %s WHERE run_id='%s' AND kind='%s' GROUP BY run_id,kind", influxMetadataMeasurement, m.runID, kind)

	query := client.Query{
		Command:  cmd,
		Database: m.config.dbName,
	}

	response, err := m.session.Query(query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query influxdb for run %s", m.runID)
	}
	if response.Error() != nil {
		return nil, errors.Wrapf(response.Error(), "response from influxdb contained error for run %s", m.runID)
	}

	for _, result := range response.Results {
		for _, row := range result.Series {
			for _, values := range row.Values {
				for index, column := range row.Columns {
					if column == "time" || index >= len(values) {
						continue
					}
					key := strings.TrimPrefix(column, "last_")
					if value, ok := values[index].(string); ok {
						metadata[key] = value
					}
				}
			}
		}
	}

	if len(metadata) == 0 {
		return nil, errors.Errorf("no metadata of kind %q found for run %s", kind, m.runID)
	}

	return metadata, nil
}

// Clear removes all metadata points tagged with the run id.
func (m *InfluxDB) Clear() error {
	cmd := fmt.Sprintf("DELETE FROM %s WHERE run_id='%s'", influxMetadataMeasurement, m.runID)
	response, err := m.session.Query(client.Query{Command: cmd, Database: m.config.dbName})
	if err != nil {
		return errors.Wrap(err, "cannot clear metadata")
	}
	return errors.Wrap(response.Error(), "cannot clear metadata")
}
