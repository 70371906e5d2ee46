package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kontor-dev/kontor/internal/config"
	"github.com/kontor-dev/kontor/internal/gitops"
)

func newSnapshotCommand() *cobra.Command {
	var dataDir string
	var message string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Commit the current state of the data directory to git",
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dataDir)
			if err != nil {
				return fmt.Errorf("resolving data dir: %w", err)
			}

			cfg, err := config.Load(filepath.Join(absDir, "kontor.yaml"))
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !gitops.IsRepo(absDir) {
				return fmt.Errorf("%s is not a git repository (run 'kontor init' without --no-git)", absDir)
			}

			hash, err := gitops.CommitAll(absDir, message, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
			if err != nil {
				return fmt.Errorf("committing data dir: %w", err)
			}

			fmt.Printf("Committed data directory (%s)\n", hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "Kontor data directory")
	cmd.Flags().StringVar(&message, "message", "snapshot: manual", "commit message")

	return cmd
}
