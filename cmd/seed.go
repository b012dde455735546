package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/foodmatch/internal/factories"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const seedBatchSize = 100

func newSeedCmd(a *app) *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the catalog with synthetic campus vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			seedCfg := a.cfg.Seed
			if seedCfg.Vendors <= 0 {
				return fmt.Errorf("seed.vendors must be positive, got %d", seedCfg.Vendors)
			}
			if seedCfg.MenuItemsMin < 0 || seedCfg.MenuItemsMax < seedCfg.MenuItemsMin {
				return fmt.Errorf("invalid menu item range %d..%d", seedCfg.MenuItemsMin, seedCfg.MenuItemsMax)
			}
			centre := models.Location{Lat: seedCfg.CampusLat, Lon: seedCfg.CampusLon}
			if !centre.Valid() || seedCfg.CampusRadius <= 0 {
				return fmt.Errorf("invalid campus %s with radius %.2fkm", centre, seedCfg.CampusRadius)
			}

			cat, err := a.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer cat.close()

			if seedCfg.Reset {
				if err := cat.vendors.DeleteAll(ctx); err != nil {
					return fmt.Errorf("reset catalog: %w", err)
				}
				a.logger.Info("catalog reset", "source", a.cfg.Catalog.Source)
			}

			factory := factories.NewVendorFactory(seedCfg.Seed, time.Now())
			bar := progressbar.NewOptions(seedCfg.Vendors,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription(fmt.Sprintf("seeding %s", seedCfg.CampusName)),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			batch := make([]*models.Vendor, 0, seedBatchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				if err := cat.vendors.BulkCreate(ctx, batch); err != nil {
					return fmt.Errorf("insert vendors: %w", err)
				}
				if err := bar.Add(len(batch)); err != nil {
					return err
				}
				batch = batch[:0]
				return nil
			}
			for i := 0; i < seedCfg.Vendors; i++ {
				batch = append(batch, factory.CreateVendor(&seedCfg))
				if len(batch) == seedBatchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			if err := flush(); err != nil {
				return err
			}
			bar.Finish()

			total, err := cat.vendors.Count(ctx)
			if err != nil {
				return err
			}
			attrs := []any{"campus", seedCfg.CampusName, "created", seedCfg.Vendors, "vendors", total}
			if cat.menuItems != nil {
				items, err := cat.menuItems.Count(ctx)
				if err != nil {
					return err
				}
				attrs = append(attrs, "menu_items", items)
			}
			a.logger.Info("catalog seeded", attrs...)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d vendors around %s (%d in catalog)\n", seedCfg.Vendors, seedCfg.CampusName, total)
			return nil
		},
	}

	flags := seedCmd.Flags()
	flags.Int("vendors", 0, "number of vendors to generate (default seed.vendors)")
	flags.Int64("seed", 0, "random seed (default seed.seed)")
	flags.Bool("reset", false, "delete the existing catalog first")
	a.v.BindPFlag("seed.vendors", flags.Lookup("vendors"))
	a.v.BindPFlag("seed.seed", flags.Lookup("seed"))
	a.v.BindPFlag("seed.reset", flags.Lookup("reset"))
	return seedCmd
}
