package main

import (
	"fmt"
	"os"

	"github.com/grimfell/muster/internal/config"
	"github.com/grimfell/muster/internal/db"
	"github.com/grimfell/muster/internal/feed"
	"github.com/grimfell/muster/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "muster",
		Short: "Gang roster and campaign cost engine",
		Long:  "Muster manages tabletop gang rosters and keeps their rating, stash and credit aggregates consistent.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newFighterCmd())
	cmd.AddCommand(newEquipCmd())
	cmd.AddCommand(newContentCmd())
	cmd.AddCommand(newRecalcCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "muster %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// connectFromConfig loads the config file and opens the database.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// feedFromConfig builds the campaign feed from the configured posters. A
// config with no posters yields a feed that publishes nothing.
func feedFromConfig(cfg *config.Config) (*feed.Feed, error) {
	var posters []feed.Poster
	if cfg.Feed.Discord.ChannelID != "" {
		p, err := feed.NewDiscord(feed.DiscordOpts{
			BotToken:  cfg.Feed.Discord.BotToken,
			ChannelID: cfg.Feed.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		posters = append(posters, p)
	}
	if cfg.Feed.Slack.ChannelID != "" {
		p, err := feed.NewSlack(feed.SlackOpts{
			BotToken:  cfg.Feed.Slack.BotToken,
			ChannelID: cfg.Feed.Slack.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		posters = append(posters, p)
	}
	return feed.New(posters...), nil
}

// publishAction posts an audit record to the campaign feed. Delivery is
// best-effort and never fails the command.
func publishAction(cfg *config.Config, gormDB *gorm.DB, action *models.ListAction) {
	if action == nil {
		return
	}
	f, err := feedFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "feed disabled: %v\n", err)
		return
	}
	name := action.ListID
	var list models.List
	if err := gormDB.First(&list, "id = ?", action.ListID).Error; err == nil {
		name = list.Name
	}
	f.Publish(name, action)
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
