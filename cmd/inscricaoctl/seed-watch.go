package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// seedWatchCmd represents the seed watch command
var seedWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a file and reload the reference data if it's modified",
	Long: `Watch a file and reload the reference data when it changes.

To trigger a reload, replace the contents of the watched file with the path
to a seed YAML file. The path must be visible to the process running
"inscricaoctl seed watch".

Running servers pick up the new data once their reference cache expires
(INSCRICAO_REFERENCE_CACHE_TTL).

Example:
  inscricaoctl seed watch /run/inscricao/seed/load`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		seeder, closeDB, err := openSeeder()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch seed data: %v\n", err)
			os.Exit(1)
		}
		defer closeDB()

		// Handle signals for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := watchSeed(ctx, seeder, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch seed data: %v\n", err)
			closeDB()
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.AddCommand(seedWatchCmd)
}

func watchSeed(ctx context.Context, seeder store.ReferenceSeeder, filename string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for seed changes\n", filename)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fmt.Printf("[%s] File modified, reloading seed data...\n", time.Now().Format(time.RFC3339))
			reloadSeed(ctx, seeder, filename)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}

// reloadSeed reads the seed path out of the trigger file and loads it.
func reloadSeed(ctx context.Context, seeder store.ReferenceSeeder, trigger string) {
	content, err := os.ReadFile(trigger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return
	}

	seedPath := strings.TrimSpace(string(content))
	if seedPath == "" {
		return
	}

	result, err := loadSeedFile(ctx, seeder, seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading seed data: %v\n", err)
		return
	}
	fmt.Printf("Loaded %d cities and %d schools from %s\n", result.Cities, result.Schools, seedPath)
}
