package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ARUNMOHANRAJ471/opp-miner/internal/config"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/dashboard"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/metrics"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/domain/prompts"
	"github.com/ARUNMOHANRAJ471/opp-miner/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "opp-miner-server",
		Short:        "AI opportunity mining dashboard backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(promptsCmd())
	rootCmd.AddCommand(dashboardCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetInt("to")
			return withPool(func(ctx context.Context, m *db.Migrator) error {
				count, err := m.UpTo(ctx, target)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().Int("to", 0, "Stop after this version (0 applies all)")
	cmd.AddCommand(upCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status, appliedAt := "pending", ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	})

	return cmd
}

func withPool(fn func(ctx context.Context, m *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, db.Migrations()))
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored metrics snapshots",
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Store a metrics payload for a filter combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			payload, err := metrics.Decode(data)
			if err != nil {
				return err
			}

			snap := &metrics.Snapshot{Filters: filtersFromFlags(cmd), Payload: *payload}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := metrics.NewSnapshotRepoPG(pool).Save(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored snapshot %s for %q\n", snap.ID, snap.Filters.Key())
			return nil
		},
	}
	importCmd.Flags().String("file", "", "Path to a metrics JSON payload")
	addFilterFlags(importCmd)
	cmd.AddCommand(importCmd)

	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("lob", "", "Line of business")
	cmd.Flags().String("time-period", "", "Time period")
	cmd.Flags().String("geography", "", "Geography")
	cmd.Flags().String("segment", "", "Member segment")
}

func filtersFromFlags(cmd *cobra.Command) metrics.Filters {
	var f metrics.Filters
	f.LOB, _ = cmd.Flags().GetString("lob")
	f.TimePeriod, _ = cmd.Flags().GetString("time-period")
	f.Geography, _ = cmd.Flags().GetString("geography")
	f.Segment, _ = cmd.Flags().GetString("segment")
	return f
}

func promptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect the prompt catalogs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the grouped prompts of a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetString("page")
			lib, err := prompts.LoadLibrary()
			if err != nil {
				return err
			}
			catalog, err := lib.Catalog(prompts.Page(page))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range catalog.Groups() {
				fmt.Fprintf(out, "%s\n", g.Label)
				for _, p := range g.Prompts {
					fmt.Fprintf(out, "  %-10s %s\n", p.ID, p.Label)
				}
			}
			return nil
		},
	}
	listCmd.Flags().String("page", string(prompts.PageDashboard), "dashboard, opportunities or segmentation")
	cmd.AddCommand(listCmd)

	return cmd
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard view for a metrics payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			plan, _ := cmd.Flags().GetString("plan")

			source := metrics.NewStaticSource()
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if source, err = metrics.NewStaticSourceFromJSON(data); err != nil {
					return err
				}
			}

			svc := dashboard.NewService(source, plan, zerolog.Nop())
			view, err := svc.Build(cmd.Context(), filtersFromFlags(cmd))
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().String("file", "", "Metrics JSON payload (defaults to the bundled sample)")
	cmd.Flags().String("plan", dashboard.DefaultPlanName, "Plan name used in the title")
	addFilterFlags(cmd)

	return cmd
}
