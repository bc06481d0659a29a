package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and artifacts",
		Long: `Remove all cached layouts and artifacts from the configured backend.

For the redis backend only townsquare's layout and artifact keys are deleted;
for mongo the cache collection is emptied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := newCache(cmd.Context(), cfg, false)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("The %s cache cannot be cleared", cfg.Cache.Backend)
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", n)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			} else {
				printDetail("Backend: %s", cfg.Cache.Backend)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
