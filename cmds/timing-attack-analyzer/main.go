package main

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/conf"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/executor"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/report"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/report/uploaders"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/run"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/target"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/validate"
)

var (
	iterationsFlag = conf.NewIntFlag("iterations", "Measured executions per input class.", 100)
	warmupsFlag    = conf.NewIntFlag("warmups", "Warm-up executions discarded before measurement starts.", 10)
	thresholdFlag  = conf.NewFloatFlag("threshold", "P-value below which timing is considered correlated with the secret input.", 0.05)
	outputFlag     = conf.NewStringFlag("output", "Destination file for the verdict report. Empty writes to stdout.", "")

	dependencyCheckFlag = conf.NewBoolFlag("dependency_check", "Verify measurement dependencies before running.", false)

	targetFlag = conf.NewStringFlag("target",
		"Command template measured for every sample. The placeholder {} is replaced with the class input; without a placeholder the input is appended.", "")
	classesFlag = conf.NewSliceFlag("class",
		"Secret-input class as name=value. State at least two (--class=valid=hunter2 --class=invalid=xxxxxxx).")

	sampleTimeoutFlag      = conf.NewDurationFlag("sample_timeout", "Bound on a single measured execution. Overruns drop the sample.", time.Minute)
	maxDroppedFractionFlag = conf.NewFloatFlag("max_dropped_fraction", "Dropped-sample fraction above which a class is excluded.", 0.1)

	runLogsFlag        = conf.NewBoolFlag("run_logs", "Store the master log under ./<app>/<run-id>/.", false)
	recordMetadataFlag = conf.NewBoolFlag("record_metadata", "Record run configuration and platform facts in the metadata database.", false)
	uploadVerdictFlag  = conf.NewBoolFlag("upload_verdict", "Upload the verdict and class summaries to the metadata database.", false)
)

func main() {
	conf.SetAppName("timing-attack-analyzer")
	conf.SetHelp(`Timing attack analyzer measures a target command under distinct secret-input classes
and reports whether execution time correlates with the secret beyond the configured threshold.`)

	run.Configure()

	session := run.NewSession()
	if runLogsFlag.Value() {
		run.InitializeLogger(conf.AppName(), session.ID)
	}

	if dependencyCheckFlag.Value() {
		if err := validate.Check(targetFlag.Value()); err != nil {
			logrus.Error(err.Error())
			os.Exit(run.ExitCodeFor(err))
		}
		logrus.Info("All measurement dependencies available")
	}
	validate.OS()

	verdict, err := measure(session)
	if err != nil {
		logrus.Errorf("%+v", err)
		os.Exit(run.ExitCodeFor(err))
	}

	analysisReport := report.Report{Session: session, Verdict: *verdict}
	if err := report.Write(outputFlag.Value(), analysisReport); err != nil {
		logrus.Errorf("%+v", err)
		os.Exit(run.ExSoftware)
	}

	persist(session, analysisReport)
}

func measure(session run.Session) (*analysis.Verdict, error) {
	classes, err := parseClasses(classesFlag.Value())
	if err != nil {
		return nil, err
	}

	template := targetFlag.Value()
	if template == "" {
		return nil, &analysis.InvalidConfigurationError{Reason: "no target command given (--target)"}
	}

	config := analysis.Config{
		Iterations:         iterationsFlag.Value(),
		Warmups:            warmupsFlag.Value(),
		Threshold:          thresholdFlag.Value(),
		SampleTimeout:      sampleTimeoutFlag.Value(),
		MaxDroppedFraction: maxDroppedFractionFlag.Value(),
	}

	analyzer, err := analysis.New(config)
	if err != nil {
		return nil, err
	}

	block := target.NewCommandBlock(executor.NewLocal(), template, config.SampleTimeout)

	logrus.Infof("Run %s: measuring %q over %d classes, %d iterations each",
		session.ID, template, len(classes), config.Iterations)

	return analyzer.Analyze(block, classes)
}

// parseClasses turns --class=name=value pairs into input classes.
func parseClasses(definitions []string) ([]analysis.InputClass, error) {
	classes := make([]analysis.InputClass, 0, len(definitions))
	for _, definition := range definitions {
		fields := strings.SplitN(definition, "=", 2)
		if len(fields) != 2 || fields[0] == "" {
			return nil, &analysis.InvalidConfigurationError{
				Reason: "class definition " + definition + " is not of the form name=value",
			}
		}
		classes = append(classes, analysis.StaticClass(fields[0], []byte(fields[1])))
	}
	if len(classes) < 2 {
		return nil, &analysis.InvalidConfigurationError{Reason: "at least two --class definitions are required"}
	}
	return classes, nil
}

// persist records run metadata and uploads the verdict when requested.
// Storage failures are logged, not fatal: the verdict already reached the
// report destination.
func persist(session run.Session, analysisReport report.Report) {
	if recordMetadataFlag.Value() {
		metadata, err := run.NewDefault(session.ID)
		if err != nil {
			logrus.Errorf("Cannot connect metadata database: %v", err)
		} else {
			if err := run.RecordRuntimeEnv(metadata, time.Now()); err != nil {
				logrus.Errorf("Cannot record runtime environment: %v", err)
			}
			if err := metadata.Record("verdict", analysisReport.Verdict.String(), run.TypeVerdict); err != nil {
				logrus.Errorf("Cannot record verdict metadata: %v", err)
			}
		}
	}

	if uploadVerdictFlag.Value() {
		uploader, err := newUploader()
		if err != nil {
			logrus.Errorf("Cannot connect verdict storage: %v", err)
			return
		}
		if err := uploader.SendVerdict(report.NewRecord(analysisReport)); err != nil {
			logrus.Errorf("Cannot upload verdict: %v", err)
		}
	}
}

func newUploader() (report.Uploader, error) {
	switch db := conf.DefaultMetadataDB.Value(); db {
	case "influxdb":
		return uploaders.NewInfluxDB(uploaders.InfluxDBConfig{
			HTTPConfig:     uploaders.DefaultInfluxHTTPConfig(),
			DBName:         conf.InfluxDBName.Value(),
			CreateDatabase: conf.InfluxDBCreateDatabase.Value(),
		})
	default:
		return uploaders.NewCassandra(uploaders.CassandraConfig{
			Username: conf.CassandraUsername.Value(),
			Password: conf.CassandraPassword.Value(),
			Host:     []string{conf.CassandraAddress.Value()},
			Port:     conf.CassandraPort.Value(),
			KeySpace: conf.CassandraKeyspaceName.Value(),
		})
	}
}
