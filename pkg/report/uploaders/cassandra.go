// Package uploaders provides the storage backends for verdict records.
package uploaders

import (
	"fmt"

	"github.com/gocql/gocql"
	"github.com/hailocab/gocassa"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/report"
)

const verdictTablePrefix = "verdict"
const classSummaryTablePrefix = "class_summary"

type cassandra struct {
	verdict      gocassa.Table
	classSummary gocassa.Table
}

type verdictRow struct {
	RunID         string
	RunName       string
	Statistic     float64
	EffectSize    float64
	Threshold     float64
	Vulnerable    bool
	MostSeparated string
}

type classSummaryRow struct {
	RunID    string
	Class    string
	Count    int
	Dropped  int
	MedianNs int64
	MADNs    int64
	MeanNs   int64
	StdDevNs int64
	MinNs    int64
	MaxNs    int64
}

// CassandraConfig stores the Cassandra verdict storage configuration.
type CassandraConfig struct {
	Username string
	Password string
	Host     []string
	Port     int
	KeySpace string
}

// NewCassandra creates a new Cassandra verdict uploader.
func NewCassandra(config CassandraConfig) (report.Uploader, error) {
	cluster := gocql.NewCluster(config.Host...)
	cluster.ProtoVersion = 4
	if config.Port != 0 {
		cluster.Port = config.Port
	}
	if config.Username != "" && config.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("creating gocql session failed: %s", err.Error())
	}
	executor := gocassa.GoCQLSessionToQueryExecutor(session)
	conn := gocassa.NewConnection(executor)
	conn.CreateKeySpace(config.KeySpace)
	keySpace := conn.KeySpace(config.KeySpace)

	verdictTable := keySpace.Table(verdictTablePrefix, &verdictRow{}, gocassa.Keys{PartitionKeys: []string{"RunID"}})
	classSummaryTable := keySpace.Table(classSummaryTablePrefix, &classSummaryRow{}, gocassa.Keys{PartitionKeys: []string{"RunID", "Class"}})
	verdictTable.CreateIfNotExist()
	classSummaryTable.CreateIfNotExist()

	return &cassandra{verdictTable, classSummaryTable}, nil
}

// SendVerdict implements the report.Uploader interface.
func (c cassandra) SendVerdict(record report.Record) error {
	err := c.verdict.Set(buildVerdictRow(record)).Run()
	if err != nil {
		return fmt.Errorf("verdict row saving failed: %s", err.Error())
	}

	for _, class := range record.Classes {
		err = c.classSummary.Set(buildClassSummaryRow(class)).Run()
		if err != nil {
			return fmt.Errorf("class summary row saving failed: %s", err.Error())
		}
	}

	return nil
}

func buildVerdictRow(record report.Record) verdictRow {
	row := verdictRow{}
	row.RunID = record.RunID
	row.RunName = record.RunName
	row.Statistic = record.Statistic
	row.EffectSize = record.EffectSize
	row.Threshold = record.Threshold
	row.Vulnerable = record.Vulnerable
	row.MostSeparated = record.MostSeparated

	return row
}

func buildClassSummaryRow(class report.ClassRecord) classSummaryRow {
	row := classSummaryRow{}
	row.RunID = class.RunID
	row.Class = class.Class
	row.Count = class.Count
	row.Dropped = class.Dropped
	row.MedianNs = class.MedianNs
	row.MADNs = class.MADNs
	row.MeanNs = class.MeanNs
	row.StdDevNs = class.StdDevNs
	row.MinNs = class.MinNs
	row.MaxNs = class.MaxNs

	return row
}
