package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/project-recall/recall/internal/config"
	"github.com/project-recall/recall/internal/ingest"
	"github.com/project-recall/recall/internal/watcher"
)

var (
	quietFlag bool
	watchFlag bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:     "ingest [path]",
	Aliases: []string{"index"},
	Short:   "Ingest a codebase as structured metadata",
	Long: `Ingest walks a codebase and stores structured metadata documents in a
local vector database under .recall/.

For every supported source file it creates:
  - a file_metadata document (search anchor with description and exports)
  - data_contract documents (interfaces, types, schemas)
  - an entry_point document (main functions, API routes, CLI commands)
  - dependency documents (resolved import relationships)

Examples:
  # Ingest the current directory
  recall ingest

  # Ingest a specific directory
  recall ingest /path/to/project

  # Ingest, then watch for changes and re-ingest incrementally
  recall ingest --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	ingestCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and re-ingest incrementally")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling ingestion...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if len(args) == 1 {
		rootDir = args[0]
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := openStore(rootDir, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	ing := buildIngestor(rootDir, cfg, st)

	progress := newProgressReporter(quietFlag)
	ing.Progress = progress.report

	summary, _, err := ing.IngestTree(ctx, rootDir, ingest.WalkOptions{
		IgnorePatterns:  cfg.Paths.Ignore,
		IncludePatterns: cfg.Paths.Include,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	progress.finish()

	if !quietFlag {
		fmt.Printf("✓ Ingested %d of %d files in %v", summary.Ingested, summary.FilesScanned, summary.Duration.Round(summaryRounding))
		if summary.Unchanged > 0 {
			fmt.Printf(" (%d unchanged)", summary.Unchanged)
		}
		fmt.Println()
		fmt.Printf("  %d data contracts, %d entry points, %d dependency documents\n",
			summary.Contracts, summary.EntryPoints, summary.Dependencies)
	}

	if !watchFlag {
		return nil
	}

	w, err := watcher.New(ing, rootDir)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	w.Start(ctx)
	defer w.Stop()

	if !quietFlag {
		fmt.Println("Watching for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()
	return nil
}
