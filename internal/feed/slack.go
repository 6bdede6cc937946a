package feed

import (
	"fmt"

	"github.com/slack-go/slack"
)

// slackClient abstracts the slack.Client methods we use, enabling test
// mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackPoster posts campaign events to a Slack channel.
type SlackPoster struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a Slack poster.
type SlackOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a Slack poster.
func NewSlack(opts SlackOpts) (*SlackPoster, error) {
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("feed: slack channel ID is required")
	}
	client := opts.Client
	if client == nil {
		if opts.BotToken == "" {
			return nil, fmt.Errorf("feed: slack bot token is required")
		}
		client = slack.New(opts.BotToken)
	}
	return &SlackPoster{client: client, channelID: opts.ChannelID}, nil
}

// Post sends the text to the configured channel.
func (p *SlackPoster) Post(text string) error {
	if _, _, err := p.client.PostMessage(p.channelID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("feed: slack post: %w", err)
	}
	return nil
}
