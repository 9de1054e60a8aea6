package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/model"
	"github.com/doodlesbykumbi/metastore/pkg/server"
	"github.com/doodlesbykumbi/metastore/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the metastore application server",
	Long: `Run the metastore application server.

To run the server requires DATABASE_URL (postgres:// or sqlite://).

By default, database migrations are run on startup. Use --no-migrate to skip.
The configuration file is watched; log settings are applied on change or
on SIGHUP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()

		if host, _ := cmd.Flags().GetString("bind-address"); cmd.Flags().Changed("bind-address") {
			cfg.BindAddress = host
		}
		if port, _ := cmd.Flags().GetInt("port"); cmd.Flags().Changed("port") {
			cfg.Port = port
		}

		var known []string
		for _, kind := range model.DefaultKinds() {
			known = append(known, kind.Name)
		}
		if err := cfg.Validate(known...); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			logrus.Info("Running database migrations...")
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		if err := runServer(cfg); err != nil {
			logrus.WithError(err).Fatal("server failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 8080, "server listen port (overrides PORT)")
	serverCmd.Flags().StringP("bind-address", "b", "127.0.0.1", "server bind address (overrides BIND_ADDRESS)")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cfg *config.MetastoreConfig) error {
	gdb, stores, err := openStores(cfg)
	if err != nil {
		return err
	}

	if err := audit.Configure(cfg.AuditEnabled, cfg.AuditDatabaseURL); err != nil {
		return err
	}

	s := server.NewServer(gdb, stores, cfg)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go watchConfiguration(ctx, cfg.ConfigFilePath())

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.Addr(),
			"kinds":   stores.Tags.Kinds(),
		}).Info("Running server")
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// watchConfiguration applies log settings when the config file changes or
// SIGHUP arrives, until ctx is done
func watchConfiguration(ctx context.Context, path string) {
	go func() {
		if err := config.Watch(ctx, path, initLogger); err != nil {
			logrus.WithError(err).Warn("configuration file watch disabled")
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := config.Reload()
			if err != nil {
				logrus.WithError(err).Warn("configuration reload failed, keeping previous configuration")
				continue
			}
			initLogger(cfg)
			logrus.Info("configuration reloaded on SIGHUP")
		}
	}
}
