package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/query"
)

var (
	exportOut          string
	exportNeighborhood string
	exportCounterType  string
	exportVolume       []string
	exportView         string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load all sources and export the filtered segments as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store := newStore()
		if err := store.Load(ctx); err != nil {
			return err
		}

		out, err := store.ExportCSV(query.Filters{
			Neighborhood: exportNeighborhood,
			CounterType:  exportCounterType,
			Volume:       exportVolume,
			View:         query.View(exportView),
		})
		if err != nil {
			return err
		}

		if exportOut == "" || exportOut == "-" {
			_, err = os.Stdout.WriteString(out)
			return err
		}
		if err := os.WriteFile(exportOut, []byte(out), 0o644); err != nil {
			return eris.Wrapf(err, "export: write %s", exportOut)
		}
		zap.L().Info("export written", zap.String("path", exportOut))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportNeighborhood, "neighborhood", "", "filter by neighborhood name")
	exportCmd.Flags().StringVar(&exportCounterType, "counter-type", "", "filter by counter type (AUTO, MANUAL)")
	exportCmd.Flags().StringSliceVar(&exportVolume, "volume", nil, "filter by volume bucket (high, medium-high, medium, medium-low, low)")
	exportCmd.Flags().StringVar(&exportView, "view", string(query.ViewCombined), "count view for bucketing (observed, predicted, combined)")
	rootCmd.AddCommand(exportCmd)
}
