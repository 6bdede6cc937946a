package main

import (
	"fmt"
	"io"

	"github.com/grimfell/muster/internal/facts"
	"github.com/grimfell/muster/internal/roster"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Gang list commands",
	}

	cmd.AddCommand(newListCreateCmd())
	cmd.AddCommand(newListShowCmd())
	cmd.AddCommand(newListLsCmd())
	cmd.AddCommand(newListArchiveCmd())
	cmd.AddCommand(newListCreditsCmd())
	return cmd
}

func newListCreateCmd() *cobra.Command {
	var (
		configPath string
		owner      string
		credits    int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new gang list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if owner == "" {
				owner = cfg.Owner
			}
			list, err := roster.CreateList(gormDB, roster.CreateListOpts{
				Name:    args[0],
				Owner:   owner,
				Credits: credits,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created list %s (%s) with %d credits\n", list.ID, list.Name, list.CreditsCurrent)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().StringVar(&owner, "owner", "", "list owner (defaults to config owner)")
	cmd.Flags().IntVar(&credits, "credits", 1000, "starting credit balance")
	return cmd
}

func newListShowCmd() *cobra.Command {
	var (
		configPath string
		fresh      bool
	)

	cmd := &cobra.Command{
		Use:   "show <list-id>",
		Short: "Show a list's cached aggregates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return runListShow(cmd.OutOrStdout(), gormDB, args[0], fresh)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "force a full recompute instead of the cached read")
	return cmd
}

func runListShow(out io.Writer, gormDB *gorm.DB, id string, fresh bool) error {
	list, err := roster.GetList(gormDB, id)
	if err != nil {
		return err
	}

	var f *facts.Facts
	if fresh {
		f, err = facts.ListFromDB(gormDB, id)
	} else {
		f, err = facts.List(gormDB, id)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s  %s (owner %s)\n", list.ID, list.Name, list.Owner)
	if f == nil {
		fmt.Fprintln(out, "  aggregates: stale (run with --fresh to recompute)")
		return nil
	}
	fmt.Fprintf(out, "  rating %d  stash %d  credits %d\n", f.Rating, f.Stash, f.Credits)
	fmt.Fprintf(out, "  fighters: %d\n", len(list.Fighters))
	return nil
}

func newListLsCmd() *cobra.Command {
	var (
		configPath string
		owner      string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List active gang lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			lists, err := roster.Lists(gormDB, owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range lists {
				staleMark := ""
				if l.Dirty {
					staleMark = " (stale)"
				}
				fmt.Fprintf(out, "%s  %-24s rating %d  stash %d  credits %d%s\n",
					l.ID, l.Name, l.RatingCurrent, l.StashCurrent, l.CreditsCurrent, staleMark)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner")
	return cmd
}

func newListArchiveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "archive <list-id>",
		Short: "Archive (soft-delete) a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := roster.ArchiveList(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	return cmd
}

func newListCreditsCmd() *cobra.Command {
	var (
		configPath  string
		delta       int
		description string
	)

	cmd := &cobra.Command{
		Use:   "credits <list-id>",
		Short: "Adjust a list's credit balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			action, err := roster.AdjustCredits(gormDB, roster.AdjustCreditsOpts{
				ListID:      args[0],
				Delta:       delta,
				User:        cfg.Owner,
				Description: description,
				DisableLog:  !cfg.LogActions(),
			})
			if err != nil {
				return err
			}
			publishAction(cfg, gormDB, action)
			out := cmd.OutOrStdout()
			if action != nil {
				fmt.Fprintf(out, "Credits %d -> %d\n", action.CreditsBefore, action.CreditsAfter)
			} else {
				fmt.Fprintf(out, "Adjusted credits by %+d\n", delta)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "muster.yaml", "path to Muster config file")
	cmd.Flags().IntVar(&delta, "delta", 0, "credit change (positive or negative)")
	cmd.Flags().StringVar(&description, "desc", "", "action description")
	return cmd
}
