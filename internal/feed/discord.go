package feed

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSession abstracts the discordgo.Session methods we use, enabling
// test mocks.
type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordPoster posts campaign events to a Discord channel.
type DiscordPoster struct {
	sess      discordSession
	channelID string
}

// DiscordOpts holds parameters for creating a Discord poster.
type DiscordOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session discordSession
}

// NewDiscord creates a Discord poster.
func NewDiscord(opts DiscordOpts) (*DiscordPoster, error) {
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("feed: discord channel ID is required")
	}
	sess := opts.Session
	if sess == nil {
		if opts.BotToken == "" {
			return nil, fmt.Errorf("feed: discord bot token is required")
		}
		s, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("feed: discord session: %w", err)
		}
		sess = s
	}
	return &DiscordPoster{sess: sess, channelID: opts.ChannelID}, nil
}

// Post sends the text to the configured channel.
func (p *DiscordPoster) Post(text string) error {
	if _, err := p.sess.ChannelMessageSend(p.channelID, text); err != nil {
		return fmt.Errorf("feed: discord send: %w", err)
	}
	return nil
}
