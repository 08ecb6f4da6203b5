package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/config"
	"github.com/shuyaguan/dc-dashboard/internal/dataset"
	"github.com/shuyaguan/dc-dashboard/internal/fetcher"
	"github.com/shuyaguan/dc-dashboard/internal/source"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dc-dashboard",
	Short: "Bicycle volume dashboard backend for Washington, DC",
	Long:  "Joins road segments, counter sites, census demographics, and model predictions into one queryable dataset, served over HTTP for the map front end.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newStore wires the retrieval client and loader from config.
func newStore() *dataset.Store {
	client := fetcher.NewClient(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})
	loader := source.New(client, source.Paths{
		Roads:         ref(cfg.Data.Roads),
		Counters:      ref(cfg.Data.Counters),
		Neighborhoods: ref(cfg.Data.Neighborhoods),
		Census:        ref(cfg.Data.Census),
		Predictions:   ref(cfg.Data.Predictions),
		Temporal:      ref(cfg.Data.Temporal),
	}, cfg.Data.FillerCount)
	return dataset.New(loader)
}

func ref(sc config.SourceConfig) source.Ref {
	return source.Ref{Primary: sc.Primary, Fallback: sc.Fallback}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
