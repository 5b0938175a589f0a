package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/EnterStudios/fabricstated/coordinator"
	"github.com/EnterStudios/fabricstated/pkg/config"
	"github.com/EnterStudios/fabricstated/pkg/fabricstate"
	"github.com/EnterStudios/fabricstated/pkg/logging"
	"github.com/EnterStudios/fabricstated/pkg/metrics"
)

var (
	serveConfigPath string
	serveMetricsAddr string
	serveAlpmEnabled bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Compile a config file and keep serving its forwarding state",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to the YAML configuration file (required)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-listen", ":9115", "address to serve Prometheus metrics on")
	serveCmd.Flags().BoolVar(&serveAlpmEnabled, "alpm", true, "synthesize the ALPM default routes in the default VRF")
	serveCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.DefaultLogger()

	f, err := os.Open(serveConfigPath)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	base := fabricstate.New(serveAlpmEnabled)
	compiled, err := config.Apply(base, cfg)
	if err != nil {
		return fmt.Errorf("compiling config: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)
	c := coordinator.New(compiled, m)
	log.Info("compiled initial switch state", "generation", c.Snapshot().Generation)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: serveMetricsAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving metrics", "addr", serveMetricsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	}

	return srv.Close()
}
