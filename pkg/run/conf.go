package run

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/conf"
	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/utils/errutil"
)

var (
	// Flag names include a dash to exclude them from dumping.
	dumpConfigFlag = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)

	dumpConfigRunIDFlag = conf.NewStringFlag("config-dump-run-id", "Dump configuration recorded for a previous run ID.", "")
)

// Configure handles configuration parsing, generation and restoration based
// on the config-* flags.
// Note: exits if configuration generation was requested.
func Configure() {
	err := conf.ParseFlags()
	if err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		previousRunID := dumpConfigRunIDFlag.Value()
		if previousRunID != "" {
			metadata, err := NewDefault(previousRunID)
			errutil.Check(err)
			flags, err := metadata.GetByKind(TypeFlags)
			errutil.Check(err)
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(0)
	}
}
