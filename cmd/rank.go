package cmd

import (
	"github.com/chrisdamba/foodmatch/internal/intent"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/chrisdamba/foodmatch/internal/recommender"
	"github.com/spf13/cobra"
)

type rankOptions struct {
	searchType  string
	text        string
	maxDistance float64
	maxPrice    float64
	minRating   float64
	category    string
	keywords    []string
	limit       int
	asJSON      bool
}

func newRankCmd(a *app) *cobra.Command {
	opts := &rankOptions{}
	rankCmd := &cobra.Command{
		Use:   "rank [TEXT]",
		Short: "Rank nearby vendors for one food intent",
		Example: `  foodmatch rank --type coffee
  foodmatch rank "vegan ramen" --max-distance 1200
  foodmatch rank --type custom --keyword protein --min-rating 4 --lat 42.28 --lon -83.74`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && opts.text == "" {
				opts.text = args[0]
			}
			req := recommender.Request{Query: opts.query(cmd), Limit: opts.limit}

			svc, cleanup, err := a.newService(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := svc.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			return printRecommendation(cmd.OutOrStdout(), rec)
		},
	}

	flags := rankCmd.Flags()
	flags.StringVar(&opts.searchType, "type", "", "suggested search (coffee, high_protein, groceries, quick_breakfast, healthy_lunch, custom)")
	flags.StringVar(&opts.text, "text", "", "free text search")
	flags.Float64Var(&opts.maxDistance, "max-distance", models.DefaultMaxDistance, "search radius in metres")
	flags.Float64Var(&opts.maxPrice, "max-price", 0, "highest acceptable average item price")
	flags.Float64Var(&opts.minRating, "min-rating", 0, "lowest acceptable rating")
	flags.StringVar(&opts.category, "category", "", "vendor category")
	flags.StringArrayVar(&opts.keywords, "keyword", nil, "keyword to match against vendor names, cuisines and tags (repeatable)")
	flags.IntVar(&opts.limit, "limit", 0, "maximum number of results (default result_limit)")
	flags.BoolVar(&opts.asJSON, "json", false, "print the recommendation as JSON")
	flags.Float64("lat", 0, "user latitude (default user_location.lat)")
	flags.Float64("lon", 0, "user longitude (default user_location.lon)")
	a.v.BindPFlag("user_location.lat", flags.Lookup("lat"))
	a.v.BindPFlag("user_location.lon", flags.Lookup("lon"))

	return rankCmd
}

// query copies only the filter flags the user set, so a template keeps its own
// values for the rest.
func (o *rankOptions) query(cmd *cobra.Command) intent.Query {
	q := intent.Query{Type: models.SearchType(o.searchType), Text: o.text}

	var filters intent.FilterInput
	set := false
	flags := cmd.Flags()
	if flags.Changed("max-distance") {
		filters.MaxDistance = &o.maxDistance
		set = true
	}
	if flags.Changed("max-price") {
		filters.MaxPrice = &o.maxPrice
		set = true
	}
	if flags.Changed("min-rating") {
		filters.MinRating = &o.minRating
		set = true
	}
	if flags.Changed("category") {
		c := models.Category(o.category)
		if parsed, err := models.ParseCategory(o.category); err == nil {
			c = parsed
		}
		filters.Category = &c
		set = true
	}
	if flags.Changed("keyword") {
		filters.Keywords = o.keywords
		set = true
	}
	if set {
		q.Filters = &filters
	}
	return q
}
