package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shuyaguan/dc-dashboard/internal/dataset"
	"github.com/shuyaguan/dc-dashboard/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load all sources and print the citywide summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store := newStore()
		if err := store.Load(ctx); err != nil {
			return err
		}

		snap, _ := store.Statistics()
		formatSnapshot(os.Stdout, store.State(), snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// formatSnapshot writes a tabular summary of the loaded dataset to w.
func formatSnapshot(out io.Writer, info dataset.Info, snap stats.Snapshot) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "load\t%s (%s)\n", info.LoadID, info.LoadedAt.Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(w, "segments\t%s\n", p.Sprintf("%d", snap.SegmentCount))
	_, _ = fmt.Fprintf(w, "counters\t%s\n", p.Sprintf("%d", info.CounterCount))
	_, _ = fmt.Fprintf(w, "neighborhoods\t%d\n", len(info.Neighborhoods))
	_, _ = fmt.Fprintf(w, "total observed\t%s\n", p.Sprintf("%.0f", snap.TotalObserved))
	_, _ = fmt.Fprintf(w, "total estimated\t%s\n", p.Sprintf("%.0f", snap.TotalEstimated))
	_, _ = fmt.Fprintf(w, "avg predicted\t%s\n", p.Sprintf("%.1f", snap.AvgPredicted))
	_, _ = fmt.Fprintf(w, "bike lane coverage\t%d%%\n", snap.BikeLaneCoveragePct)
	_, _ = fmt.Fprintf(w, "avg income\t%s\n", p.Sprintf("$%.0f", snap.AvgIncome))
	_, _ = fmt.Fprintf(w, "avg population\t%s\n", p.Sprintf("%.0f", snap.AvgPopulation))
	_, _ = fmt.Fprintf(w, "avg bike commute\t%.1f%%\n", snap.AvgBikeCommutePct)
	_, _ = fmt.Fprintf(w, "avg education\t%.1f%%\n", snap.AvgEducationPct)
	_, _ = fmt.Fprintf(w, "model accuracy\t%d%%\n", snap.ModelAccuracyPct)
	_ = w.Flush()
}
