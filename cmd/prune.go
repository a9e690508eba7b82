package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"photosync/cache"
	"photosync/db"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop cache entries for files that no longer exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.Load(db.DB)
		if err != nil {
			return err
		}

		removed, err := c.Prune()
		if err != nil {
			return err
		}

		fmt.Printf("pruned %d of %d cache entries\n", removed, removed+c.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
