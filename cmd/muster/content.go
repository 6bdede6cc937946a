package main

import (
	"fmt"
	"strconv"

	"github.com/grimfell/muster/internal/roster"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Reference-data cost editing",
		Long:  "Edits shared reference costs. Dependent caches are invalidated by the sweeper, not inline.",
	}

	cmd.AddCommand(newContentCostCmd("equipment", "Set an equipment item's base cost", roster.SetEquipmentCost))
	cmd.AddCommand(newContentCostCmd("profile", "Set a weapon profile's cost", roster.SetWeaponProfileCost))
	cmd.AddCommand(newContentCostCmd("fighter-type", "Set a fighter type's base cost", roster.SetFighterTypeBaseCost))
	cmd.AddCommand(newContentListCostCmd())
	return cmd
}

func newContentCostCmd(use, short string, set func(db *gorm.DB, id string, cost int) error) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   use + " <id> <cost>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid cost %q: %w", args[1], err)
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := set(gormDB, args[0], cost); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s %s cost to %d (invalidation queued)\n", use, args[0], cost)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	return cmd
}

func newContentListCostCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list-cost <fighter-type-id> <equipment-id> <cost>",
		Short: "Set a per-fighter-type equipment cost override",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid cost %q: %w", args[2], err)
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := roster.SetEquipmentListCost(gormDB, args[0], args[1], cost); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set list cost %s/%s to %d (invalidation queued)\n", args[0], args[1], cost)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	return cmd
}
