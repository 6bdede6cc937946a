package main

import (
	"fmt"

	"github.com/grimfell/muster/internal/roster"
	"github.com/spf13/cobra"
)

func newFighterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fighter",
		Short: "Fighter commands",
	}

	cmd.AddCommand(newFighterAddCmd())
	cmd.AddCommand(newFighterAdvanceCmd())
	cmd.AddCommand(newFighterRemoveCmd())
	return cmd
}

func newFighterAddCmd() *cobra.Command {
	var (
		configPath string
		listID     string
		typeID     string
		stash      bool
		parentID   string
		payment    int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Hire a fighter onto a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			fighter, action, err := roster.AddFighter(gormDB, roster.AddFighterOpts{
				ListID:          listID,
				FighterTypeID:   typeID,
				Name:            args[0],
				IsStash:         stash,
				ParentFighterID: parentID,
				Payment:         payment,
				User:            cfg.Owner,
				DisableLog:      !cfg.LogActions(),
			})
			if err != nil {
				return err
			}
			publishAction(cfg, gormDB, action)
			fmt.Fprintf(cmd.OutOrStdout(), "Hired %s (%s), rating %d\n", fighter.Name, fighter.ID, fighter.RatingCurrent)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().StringVar(&listID, "list", "", "list ID (required)")
	cmd.Flags().StringVar(&typeID, "type", "", "fighter type ID")
	cmd.Flags().BoolVar(&stash, "stash", false, "create as the stash pseudo-fighter")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent fighter ID (beasts, vehicles)")
	cmd.Flags().IntVar(&payment, "payment", 0, "credits paid for the hire")
	cmd.MarkFlagRequired("list")
	return cmd
}

func newFighterAdvanceCmd() *cobra.Command {
	var (
		configPath string
		cost       int
		payment    int
	)

	cmd := &cobra.Command{
		Use:   "advance <fighter-id>",
		Short: "Record an advancement on a fighter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			action, err := roster.AdvanceFighter(gormDB, roster.AdvanceFighterOpts{
				FighterID:  args[0],
				Cost:       cost,
				Payment:    payment,
				User:       cfg.Owner,
				DisableLog: !cfg.LogActions(),
			})
			if err != nil {
				return err
			}
			publishAction(cfg, gormDB, action)
			out := cmd.OutOrStdout()
			if action != nil {
				fmt.Fprintf(out, "Rating %d -> %d\n", action.RatingBefore, action.RatingAfter)
			} else {
				fmt.Fprintf(out, "Advanced %s by %d\n", args[0], cost)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().IntVar(&cost, "cost", 0, "rating increase of the advancement")
	cmd.Flags().IntVar(&payment, "payment", 0, "credits paid, if any")
	return cmd
}

func newFighterRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <fighter-id>",
		Short: "Remove a fighter and its equipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			action, err := roster.RemoveFighter(gormDB, roster.RemoveFighterOpts{
				FighterID:  args[0],
				User:       cfg.Owner,
				DisableLog: !cfg.LogActions(),
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
	return cmd
}
