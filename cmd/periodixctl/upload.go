package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meltforce/periodix/internal/logging"
	"github.com/meltforce/periodix/internal/upload"
	"github.com/spf13/cobra"
)

func newUploadCmd(root *rootOptions) *cobra.Command {
	var (
		apiKey   string
		stateDir string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Send Alpha Progression CSV exports to the server",
		Long:  "Walks path (a file or a directory) for .csv exports and imports every file the server has not accepted yet.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" && !dryRun {
				return fmt.Errorf("--api-key is required (or use --dry-run)")
			}
			log := logging.NewWithWriter(cmd.ErrOrStderr(), root.logLevel, "text")

			if stateDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolving home directory: %w", err)
				}
				stateDir = filepath.Join(home, ".periodix")
			}
			state, err := upload.OpenStateDB(stateDir)
			if err != nil {
				return err
			}
			defer state.Close()

			if dryRun {
				log.Info("DRY RUN mode: exports will be parsed but not sent")
			}
			u := upload.New(upload.NewClient(root.server, apiKey), state, args[0], dryRun, log)
			stats, runErr := u.Run(cmd.Context())
			printStats(cmd, stats)
			return runErr
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("PERIODIX_API_KEY"), "import API key")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "directory of the upload state database (default ~/.periodix)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse exports but don't send them")
	return cmd
}

func printStats(cmd *cobra.Command, stats *upload.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Upload Summary ===")
	fmt.Fprintf(out, "  Files total:      %d\n", stats.FilesTotal)
	fmt.Fprintf(out, "  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Fprintf(out, "  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Fprintf(out, "  Files errored:    %d\n", stats.FilesErrored)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Sessions sent:    %d\n", stats.SessionsSent)
	fmt.Fprintf(out, "  Workouts added:   %d\n", stats.WorkoutsInserted)
	fmt.Fprintf(out, "  Sets added:       %d\n", stats.SetsInserted)

	if len(stats.UnknownExercises) > 0 {
		fmt.Fprintf(out, "\n  Exercises not in the catalog:\n")
		for _, name := range stats.UnknownExercises {
			fmt.Fprintf(out, "    - %s\n", name)
		}
	}
	fmt.Fprintln(out)
}
