package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"floor-layout/internal/common/config"
	"floor-layout/internal/layout/models"
	"floor-layout/internal/layout/repository"
	"floor-layout/internal/layout/store"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ============================================================
// Layout CLI
// ============================================================

var dbPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cmd := &cobra.Command{
		Use:          "layoutctl",
		Short:        "Maintenance tool for restaurant floor layouts",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "path to the layout sqlite database")

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand(cfg.Editor))
	cmd.AddCommand(newTablesCommand())
	cmd.AddCommand(newArrangeCommand(cfg.Editor))
	return cmd
}

func openRepo(ctx context.Context) (*repository.Repository, func(), error) {
	db, err := repository.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.New(db)
	if err := repo.Init(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", dbPath)
			return nil
		},
	}
}

func newSeedCommand(ec config.EditorConfig) *cobra.Command {
	var name string
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a floor with unplaced tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeDB, err := openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			floor := models.Floor{
				ID:         uuid.NewString(),
				Name:       name,
				GridSize:   models.GridSize{Width: ec.GridWidth, Height: ec.GridHeight},
				SnapToGrid: ec.SnapToGrid,
				Dimensions: models.Size{Width: 1200, Height: 800},
			}
			if err := repo.CreateFloor(ctx, floor); err != nil {
				return err
			}
			for i := range count {
				t := models.Entity{
					ID:       uuid.NewString(),
					FloorID:  floor.ID,
					Name:     fmt.Sprintf("T%d", i+1),
					Shape:    models.ShapeSquare,
					Capacity: 4,
					Status:   models.StatusAvailable,
				}
				if err := repo.CreateTable(ctx, t); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "floor %s (%s) with %d tables\n", floor.ID, floor.Name, count)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Main hall", "floor name")
	cmd.Flags().IntVar(&count, "tables", 6, "number of tables to create")
	return cmd
}

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables FLOOR_ID",
		Short: "List tables of a floor with their positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeDB, err := openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			tables, err := repo.ListTables(ctx, args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tX\tY\tROTATION\tSTATUS")
			for _, t := range tables {
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.0f\t%s\n", t.ID, t.Name, t.Position.X, t.Position.Y, t.Rotation, t.Status)
			}
			return w.Flush()
		},
	}
}

// newArrangeCommand сохраняет авто-раскладку в базу, чтобы она перестала
// быть только эвристикой отображения.
func newArrangeCommand(ec config.EditorConfig) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "arrange FLOOR_ID",
		Short: "Persist the grid arrangement of tables that were never positioned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, closeDB, err := openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			tables, err := repo.ListTables(ctx, args[0])
			if err != nil {
				return err
			}
			s := store.New(store.ArrangeOptions{Columns: ec.ArrangeColumns, Spacing: ec.ArrangeSpacing, Margin: ec.ArrangeMargin})
			s.Seed(args[0], tables)

			var updates []models.Update
			for _, id := range s.Arranged() {
				u, _ := s.Update(id)
				updates = append(updates, u)
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> (%.0f, %.0f)\n", id, u.Position.X, u.Position.Y)
			}
			if len(updates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to arrange")
				return nil
			}
			if dryRun {
				return nil
			}
			return repo.UpdateEntities(ctx, updates)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the arrangement without saving it")
	return cmd
}
