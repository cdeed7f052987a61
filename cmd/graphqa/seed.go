package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/graphqa/internal/config"
	"github.com/vanshika/graphqa/internal/graph"
	"github.com/vanshika/graphqa/internal/seed"
)

func (a *app) seedCommand() *cobra.Command {
	var (
		dataset string
		workers int
		out     string
		gen     seed.GeneratorConfig
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a demo graph of users and pins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.dataset(cmd, dataset, gen)
			if err != nil {
				return err
			}
			if out != "" {
				if err := seed.WriteDataset(ds, out); err != nil {
					return err
				}
				a.logger.Info("dataset written", "path", out, "users", len(ds.Users), "pins", len(ds.Pins))
				return nil
			}
			return a.seed(cmd.Context(), ds, workers)
		},
	}

	def := seed.DefaultGeneratorConfig()
	flags := cmd.Flags()
	flags.StringVar(&dataset, "dataset", "", "JSON dataset to load (built-in demo data when empty)")
	flags.IntVar(&workers, "workers", 4, "number of concurrent writers")
	flags.StringVar(&out, "out", "", "write the dataset to this file instead of loading it")
	flags.IntVar(&gen.NumUsers, "generate-users", def.NumUsers, "number of users to generate")
	flags.IntVar(&gen.NumPins, "generate-pins", def.NumPins, "number of pins to generate")
	flags.IntVar(&gen.MaxViewers, "max-viewers", def.MaxViewers, "maximum users a generated pin is shared with")
	flags.Float64Var(&gen.ShareChance, "share-chance", def.ShareChance, "probability a generated pin is shared")
	flags.Int64Var(&gen.Seed, "seed", def.Seed, "random seed for deterministic generation")
	cmd.MarkFlagsMutuallyExclusive("dataset", "generate-users")
	cmd.MarkFlagsMutuallyExclusive("dataset", "generate-pins")
	return cmd
}

// dataset picks the dataset source: a file, the generator when any generator
// flag is set, or the built-in demo data.
func (a *app) dataset(cmd *cobra.Command, path string, gen seed.GeneratorConfig) (seed.Dataset, error) {
	if path != "" {
		return seed.LoadDataset(path)
	}
	for _, name := range []string{"generate-users", "generate-pins", "max-viewers", "share-chance", "seed"} {
		if cmd.Flags().Changed(name) {
			return seed.NewGenerator(gen).Generate(cmd.Context())
		}
	}
	return seed.Demo(), nil
}

func (a *app) seed(ctx context.Context, ds seed.Dataset, workers int) error {
	creds, err := config.Resolve(a.cfg.CredentialSource())
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            creds.URI,
		Database:       a.cfg.Graph.Database,
		Username:       creds.Username,
		Password:       creds.Password,
		MaxConnections: a.cfg.Graph.MaxConnections,
		Timeout:        a.cfg.Graph.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			a.logger.Warn("closing graph client failed", "error", err)
		}
	}()
	if err := client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify connectivity: %w", err)
	}

	start := time.Now()
	loader := seed.NewLoader(seed.NewRepository(client), workers, a.logger)
	if err := loader.Load(ctx, ds); err != nil {
		return err
	}
	a.logger.Info("seed complete", "duration", time.Since(start).String(), "users", len(ds.Users), "pins", len(ds.Pins))
	return nil
}
