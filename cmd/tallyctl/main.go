package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	formworkflow "quorum/contexts/tally-operations/form-workflow-service"
	tallypostgres "quorum/contexts/tally-operations/form-workflow-service/adapters/postgres"
	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
)

// tallyctl is the operator CLI: schema migration, quarantine check seeding,
// and the CSV exports used for result publication.
var rootCmd = &cobra.Command{
	Use:           "tallyctl",
	Short:         "Operator tooling for the tally workflow",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, pg, err := openModule()
		if err != nil {
			return err
		}
		defer closeQuietly(pg)
		fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
		return nil
	},
}

var seedChecksCmd = &cobra.Command{
	Use:   "seed-checks",
	Short: "Load quarantine check definitions from the TOML seed file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = cfg.QuarantineConfigPath
		}
		seeds, err := config.LoadQuarantineSeeds(path)
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return fmt.Errorf("no quarantine checks found in %q", path)
		}

		repo, pg, err := openRepo()
		if err != nil {
			return err
		}
		defer closeQuietly(pg)

		for _, seed := range seeds {
			check := entities.QuarantineCheck{
				QuarantineCheckID: seed.Name,
				TallyID:           seed.TallyID,
				Name:              seed.Name,
				Method:            entities.QuarantineMethod(seed.Method),
				Value:             seed.Value,
				Percentage:        seed.Percentage,
				Active:            seed.Active,
			}
			if err := repo.UpsertQuarantineCheck(cmd.Context(), check); err != nil {
				return fmt.Errorf("seed check %q: %w", seed.Name, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d quarantine checks\n", len(seeds))
		return nil
	},
}

var seedTallyCmd = &cobra.Command{
	Use:   "seed-tally",
	Short: "Provision a tally with the configured cover-print settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		tallyID, _ := cmd.Flags().GetString("tally")
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = tallyID
		}

		repo, pg, err := openRepo()
		if err != nil {
			return err
		}
		defer closeQuietly(pg)

		now := time.Now().UTC()
		tally := entities.Tally{
			TallyID:                    tallyID,
			Name:                       name,
			Active:                     true,
			PrintCoverInIntake:         cfg.PrintCoverInIntake,
			PrintCoverInClearance:      cfg.PrintCoverInClearance,
			PrintCoverInQualityControl: cfg.PrintCoverInQualityControl,
			CreatedAt:                  now,
			UpdatedAt:                  now,
		}
		if err := repo.SaveTally(cmd.Context(), tally); err != nil {
			return fmt.Errorf("seed tally %q: %w", tallyID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded tally %s\n", tallyID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write tally CSV exports",
}

var exportCandidateVotesCmd = &cobra.Command{
	Use:   "candidate-votes",
	Short: "Per-candidate vote totals across completed forms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tallyID, _ := cmd.Flags().GetString("tally")
		topN, _ := cmd.Flags().GetInt("top-n")
		return withExportOutput(cmd, func(module formworkflow.Module, out io.Writer) error {
			return module.Handler.ExportCandidateVotesHandler(cmd.Context(), out, tallyID, topN)
		})
	},
}

var exportBarcodeResultsCmd = &cobra.Command{
	Use:   "barcode-results",
	Short: "Per-barcode active result rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tallyID, _ := cmd.Flags().GetString("tally")
		return withExportOutput(cmd, func(module formworkflow.Module, out io.Writer) error {
			return module.Handler.ExportBarcodeResultsHandler(cmd.Context(), out, tallyID)
		})
	},
}

var exportDuplicateResultsCmd = &cobra.Command{
	Use:   "duplicate-results",
	Short: "Forms sharing identical vote patterns within a center and ballot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tallyID, _ := cmd.Flags().GetString("tally")
		return withExportOutput(cmd, func(module formworkflow.Module, out io.Writer) error {
			return module.Handler.ExportDuplicateResultsHandler(cmd.Context(), out, tallyID)
		})
	},
}

var exportFormHistoryCmd = &cobra.Command{
	Use:   "form-history",
	Short: "State transition history for one result form",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formID, _ := cmd.Flags().GetString("form")
		return withExportOutput(cmd, func(module formworkflow.Module, out io.Writer) error {
			return module.Handler.ExportFormHistoryHandler(cmd.Context(), out, formID)
		})
	},
}

func withExportOutput(cmd *cobra.Command, write func(formworkflow.Module, io.Writer) error) error {
	module, pg, err := openModule()
	if err != nil {
		return err
	}
	defer closeQuietly(pg)

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	return write(module, out)
}

func openRepo() (*tallypostgres.Repository, *db.Postgres, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pg, err := db.Open(cfg.DBDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", cfg.ServiceName, "process", "tallyctl")
	repo := tallypostgres.NewRepository(pg.DB, logger)
	if err := repo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	return repo, pg, nil
}

func openModule() (formworkflow.Module, *db.Postgres, error) {
	cfg, err := config.Load()
	if err != nil {
		return formworkflow.Module{}, nil, err
	}

	repo, pg, err := openRepo()
	if err != nil {
		return formworkflow.Module{}, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("service", cfg.ServiceName, "process", "tallyctl")
	module := formworkflow.NewModule(formworkflow.Dependencies{
		Forms:        repo,
		Tallies:      repo,
		Geography:    repo,
		Ballots:      repo,
		Results:      repo,
		Recons:       repo,
		Reviews:      repo,
		Checks:       repo,
		Requests:     repo,
		Stats:        repo,
		Revisions:    repo,
		Outbox:       repo,
		Clock:        tallypostgres.SystemClock{},
		IDGen:        tallypostgres.UUIDGenerator{},
		Logger:       logger,
		StartBarcode: cfg.StartBarcode,
		OCVCenterMin: cfg.OCVCenterMin,
	})
	return module, pg, nil
}

func closeQuietly(pg *db.Postgres) {
	if err := pg.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close database: %v\n", err)
	}
}

func init() {
	seedChecksCmd.Flags().String("file", "", "TOML seed file (defaults to QUARANTINE_CONFIG)")

	seedTallyCmd.Flags().String("tally", "", "tally identifier")
	seedTallyCmd.Flags().String("name", "", "display name (defaults to the identifier)")
	_ = seedTallyCmd.MarkFlagRequired("tally")

	for _, cmd := range []*cobra.Command{
		exportCandidateVotesCmd,
		exportBarcodeResultsCmd,
		exportDuplicateResultsCmd,
	} {
		cmd.Flags().String("tally", "", "tally identifier")
		cmd.Flags().String("out", "", "output file (defaults to stdout)")
		_ = cmd.MarkFlagRequired("tally")
	}
	exportCandidateVotesCmd.Flags().Int("top-n", 0, "include a divergence column for the top N candidates")

	exportFormHistoryCmd.Flags().String("form", "", "result form identifier")
	exportFormHistoryCmd.Flags().String("out", "", "output file (defaults to stdout)")
	_ = exportFormHistoryCmd.MarkFlagRequired("form")

	exportCmd.AddCommand(
		exportCandidateVotesCmd,
		exportBarcodeResultsCmd,
		exportDuplicateResultsCmd,
		exportFormHistoryCmd,
	)
	rootCmd.AddCommand(migrateCmd, seedChecksCmd, seedTallyCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
