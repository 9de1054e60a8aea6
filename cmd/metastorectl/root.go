package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "metastorectl",
	Short: "Metastore server and administration tool",
	Long: `metastorectl runs the metastore server and administers its database:
schema migrations, projects, tags and the audit log.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(config.Get())
	},
}

// initLogger applies the configured log level and format to logrus
func initLogger(cfg *config.MetastoreConfig) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("log_level", cfg.LogLevel).Warn("invalid log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
