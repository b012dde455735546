package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chrisdamba/foodmatch/internal/recommender"
)

func printRecommendation(w io.Writer, rec *recommender.Recommendation) error {
	title := rec.Intent.DisplayText
	if rec.Intent.Emoji != "" {
		title = rec.Intent.Emoji + " " + title
	}
	fmt.Fprintf(w, "%s near %s (%d results)\n", title, rec.Location, len(rec.Results))
	if len(rec.Results) == 0 {
		_, err := fmt.Fprintln(w, "  nothing matches; try a wider distance or fewer filters")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVENDOR\tSCORE\tDISTANCE\tWALK\tREASON\tPICK")
	for i, r := range rec.Results {
		pick := "-"
		if r.MenuItem != nil {
			pick = fmt.Sprintf("%s ($%.2f)", r.MenuItem.Name, r.MenuItem.Price)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.0fm\t%d min\t%s\t%s\n",
			i+1, r.Vendor.Name, r.MatchScore, r.Distance, r.WalkTime, r.MatchReason, pick)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
