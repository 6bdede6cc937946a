package main

import (
	"fmt"

	"github.com/grimfell/muster/internal/roster"
	"github.com/spf13/cobra"
)

func newEquipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equip",
		Short: "Equipment assignment commands",
	}

	cmd.AddCommand(newEquipAssignCmd())
	cmd.AddCommand(newEquipRemoveCmd())
	return cmd
}

func newEquipAssignCmd() *cobra.Command {
	var (
		configPath string
		fighterID  string
		profiles   []string
		upgrade    int
		payment    int
	)

	cmd := &cobra.Command{
		Use:   "assign <equipment-id>",
		Short: "Assign equipment to a fighter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			assignment, action, err := roster.AssignEquipment(gormDB, roster.AssignEquipmentOpts{
				FighterID:        fighterID,
				EquipmentID:      args[0],
				WeaponProfileIDs: profiles,
				UpgradeCost:      upgrade,
				Payment:          payment,
				User:             cfg.Owner,
				DisableLog:       !cfg.LogActions(),
			})
			if err != nil {
				return err
			}
			publishAction(cfg, gormDB, action)
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s (%s), rating %d\n",
				assignment.EquipmentID, assignment.ID, assignment.RatingCurrent)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().StringVar(&fighterID, "fighter", "", "fighter ID (required)")
	cmd.Flags().StringSliceVar(&profiles, "profile", nil, "weapon profile IDs to include")
	cmd.Flags().IntVar(&upgrade, "upgrade", 0, "upgrade cost to add")
	cmd.Flags().IntVar(&payment, "payment", 0, "credits paid for the purchase")
	cmd.MarkFlagRequired("fighter")
	return cmd
}

func newEquipRemoveCmd() *cobra.Command {
	var (
		configPath string
		sale       int
	)

	cmd := &cobra.Command{
		Use:   "remove <assignment-id>",
		Short: "Remove or sell an equipment assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			action, err := roster.RemoveAssignment(gormDB, roster.RemoveAssignmentOpts{
				AssignmentID: args[0],
				SalePrice:    sale,
				User:         cfg.Owner,
				DisableLog:   !cfg.LogActions(),
			})
			if err != nil {
				return err
			}
			publishAction(cfg, gormDB, action)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().IntVar(&sale, "sale", 0, "credits received for selling the item")
	return cmd
}
