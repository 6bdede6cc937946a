package main

import (
	"fmt"
	"io"

	"github.com/grimfell/muster/internal/facts"
	"github.com/grimfell/muster/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRecalcCmd() *cobra.Command {
	var (
		configPath string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "recalc [list-id]",
		Short: "Force a full bottom-up recomputation",
		Long:  "Recomputes cached aggregates from source data for one list, or with --all for every stale list.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if all {
				return runRecalcAll(out, gormDB)
			}
			if len(args) == 0 {
				return fmt.Errorf("recalc: provide a list ID or --all")
			}
			f, err := facts.ListFromDB(gormDB, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: rating %d  stash %d\n", args[0], f.Rating, f.Stash)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().BoolVar(&all, "all", false, "recompute every stale list")
	return cmd
}

func runRecalcAll(out io.Writer, gormDB *gorm.DB) error {
	var ids []string
	if err := gormDB.Model(&models.List{}).
		Where("dirty = ? AND archived_at IS NULL", true).
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("recalc: find stale lists: %w", err)
	}

	for _, id := range ids {
		f, err := facts.ListFromDB(gormDB, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: rating %d  stash %d\n", id, f.Rating, f.Stash)
	}
	fmt.Fprintf(out, "Recomputed %d list(s)\n", len(ids))
	return nil
}
