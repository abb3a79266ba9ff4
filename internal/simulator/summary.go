package simulator

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
)

// PrintSummary writes a human readable summary of a report
func PrintSummary(w io.Writer, r *Report) {
	stats := r.Stats

	fmt.Fprintf(w, "\n=== FINAL RESULTS (%s, seed %d) ===\n", r.Kind, r.Seed)
	rooms := make([]string, 0, len(r.Rounds))
	for id := range r.Rounds {
		rooms = append(rooms, id)
	}
	slices.Sort(rooms)
	for _, id := range rooms {
		fmt.Fprintf(w, "Room %s: %d rounds\n", id, r.Rounds[id])
	}
	fmt.Fprintf(w, "Elapsed: %v\n", r.Elapsed)

	fmt.Fprintf(w, "\n=== PLAYERS ===\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tROOM\tSTRATEGY\tBALANCE\tNET\tBANKRUPT\tW-L-T")
	for _, p := range r.Players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%+d\t%d\t%d-%d-%d\n",
			p.Name, p.Room, p.Strategy, p.Balance, p.Net, p.Bankruptcies,
			p.Record.Wins, p.Record.Losses, p.Record.Ties)
	}
	_ = tw.Flush()

	if stats == nil || stats.Settlements == 0 {
		fmt.Fprintf(w, "\nNo settlements recorded.\n")
		return
	}

	low, high := stats.ConfidenceInterval95()
	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Settlements: %d (%d won, %d lost, %d tied, %d bankrupt)\n",
		stats.Settlements, stats.Wins, stats.Losses, stats.Ties, stats.Bankruptcies)
	fmt.Fprintf(w, "Mean: %.2f per settlement\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.2f\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.2f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.2f, %.2f]\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	if stats.Staked > 0 {
		fmt.Fprintf(w, "Staked: %d, return to player %.1f%%, bailouts %d\n",
			stats.Staked, stats.ReturnToPlayer()*100, stats.Bailouts)
	}

	fmt.Fprintf(w, "\n=== BY CATEGORY ===\n")
	for _, name := range stats.CategoryNames() {
		fmt.Fprintf(w, "%s: %d settlements, %.2f mean\n",
			name, stats.Categories[name].Settlements, stats.CategoryMean(name))
	}
}
