package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/inscricao/pkg/config"
	"github.com/doodlesbykumbi/inscricao/pkg/db"
	"github.com/doodlesbykumbi/inscricao/pkg/seed"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/inscricao/pkg/server/store/gorm"
)

// seedLoadCmd represents the seed load command
var seedLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load cities and schools from a YAML file",
	Long: `Load cities and schools from a YAML file into the reference database.

The file is validated as a whole before anything is written, and all rows
are written in a single transaction.

Example:
  inscricaoctl seed load escolas.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		seeder, closeDB, err := openSeeder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load seed data: %v\n", err)
			os.Exit(1)
		}
		defer closeDB()

		result, err := loadSeedFile(context.Background(), seeder, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load seed data: %v\n", err)
			closeDB()
			os.Exit(1)
		}

		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	seedCmd.AddCommand(seedLoadCmd)
}

// openSeeder connects to the reference database.
func openSeeder() (store.ReferenceSeeder, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.Connect(db.Config{URL: cfg.ReferenceURL()})
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return gormstore.NewReferenceStore(database), closeDB, nil
}

func loadSeedFile(ctx context.Context, seeder store.ReferenceSeeder, filename string) (*seed.LoadResult, error) {
	data, err := seed.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return seed.Load(ctx, seeder, data)
}
