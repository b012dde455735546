package cmd

import (
	"fmt"

	"github.com/chrisdamba/foodmatch/internal/recommender"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBatchCmd(a *app) *cobra.Command {
	var asJSON bool
	batchCmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Rank a file of queries against one catalog snapshot",
		Long: `batch reads a YAML or JSON document with a "requests" list and ranks every
request concurrently against the same catalog snapshot.

  requests:
    - type: coffee
    - text: vegan ramen
      limit: 3
    - type: custom
      location: {lat: 42.2768, lon: -83.7401}
      filters: {max_distance: 800, keywords: [protein]}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := readRequests(args[0])
			if err != nil {
				return err
			}

			svc, cleanup, err := a.newService(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			recs, err := svc.RecommendBatch(cmd.Context(), reqs)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			for i, rec := range recs {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := printRecommendation(cmd.OutOrStdout(), rec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	batchCmd.Flags().BoolVar(&asJSON, "json", false, "print the recommendations as JSON")
	return batchCmd
}

// readRequests decodes the "requests" list of a YAML or JSON file. Field names
// follow the json tags of recommender.Request.
func readRequests(path string) ([]recommender.Request, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading batch file: %w", err)
	}
	if !v.IsSet("requests") {
		return nil, fmt.Errorf("batch file %s has no requests list", path)
	}

	var reqs []recommender.Request
	err := v.UnmarshalKey("requests", &reqs, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
		dc.Squash = true
		dc.ErrorUnused = true
	})
	if err != nil {
		return nil, fmt.Errorf("unable to decode batch requests: %w", err)
	}
	return reqs, nil
}
