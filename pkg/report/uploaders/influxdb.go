package uploaders

import (
	"fmt"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
	"github.com/pkg/errors"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/conf"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/report"
)

const verdictMeasurement = "verdict"
const classSummaryMeasurement = "class_summary"

type influxDB struct {
	session client.Client
	dbName  string
}

// InfluxDBConfig stores the InfluxDB verdict storage configuration.
type InfluxDBConfig struct {
	HTTPConfig     client.HTTPConfig
	DBName         string
	CreateDatabase bool
}

// DefaultInfluxHTTPConfig applies the InfluxDB connection settings from the
// command line flags and environment variables.
func DefaultInfluxHTTPConfig() client.HTTPConfig {
	return client.HTTPConfig{
		Addr:               fmt.Sprintf("http://%s:%d", conf.InfluxDBAddress.Value(), conf.InfluxDBPort.Value()),
		Password:           conf.InfluxDBPassword.Value(),
		Username:           conf.InfluxDBUsername.Value(),
		InsecureSkipVerify: conf.InfluxDBInsecureSkipVerify.Value(),
	}
}

// NewInfluxDB creates a new InfluxDB verdict uploader.
func NewInfluxDB(config InfluxDBConfig) (report.Uploader, error) {
	session, err := client.NewHTTPClient(config.HTTPConfig)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create influx client for verdict storage")
	}

	if config.CreateDatabase {
		response, err := session.Query(client.Query{
			Command:  fmt.Sprintf("CREATE DATABASE %s", config.DBName),
			Database: ""})
		if err != nil {
			return nil, errors.Wrap(err, "cannot create influx database for verdict storage")
		}
		if response.Error() != nil {
			return nil, errors.Wrap(response.Error(), "response contains error for verdict storage")
		}
	}

	return &influxDB{session: session, dbName: config.DBName}, nil
}

// SendVerdict implements the report.Uploader interface.
func (i *influxDB) SendVerdict(record report.Record) error {
	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: i.dbName})
	if err != nil {
		return errors.Wrap(err, "creation of batch points for InfluxDB failed")
	}

	now := time.Now()

	verdictPoint, err := client.NewPoint(verdictMeasurement,
		map[string]string{"run_id": record.RunID},
		map[string]interface{}{
			"run_name":       record.RunName,
			"statistic":      record.Statistic,
			"effect_size":    record.EffectSize,
			"threshold":      record.Threshold,
			"vulnerable":     record.Vulnerable,
			"most_separated": record.MostSeparated,
		}, now)
	if err != nil {
		return errors.Wrap(err, "cannot create verdict point")
	}
	batchPoints.AddPoint(verdictPoint)

	for _, class := range record.Classes {
		classPoint, err := client.NewPoint(classSummaryMeasurement,
			map[string]string{"run_id": class.RunID, "class": class.Class},
			map[string]interface{}{
				"count":     class.Count,
				"dropped":   class.Dropped,
				"median_ns": class.MedianNs,
				"mad_ns":    class.MADNs,
				"mean_ns":   class.MeanNs,
				"stddev_ns": class.StdDevNs,
				"min_ns":    class.MinNs,
				"max_ns":    class.MaxNs,
			}, now)
		if err != nil {
			return errors.Wrapf(err, "cannot create class summary point for %q", class.Class)
		}
		batchPoints.AddPoint(classPoint)
	}

	return errors.Wrap(i.session.Write(batchPoints), "cannot publish verdict")
}
