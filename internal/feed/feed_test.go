package feed

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/grimfell/muster/internal/models"
	"github.com/slack-go/slack"
)

type mockDiscord struct {
	sent []string
	err  error
}

func (m *mockDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, content)
	return &discordgo.Message{Content: content}, nil
}

type mockSlack struct {
	calls int
	err   error
}

func (m *mockSlack) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	m.calls++
	return channelID, "ts", nil
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		action models.ListAction
		want   string
	}{
		{
			name: "full",
			action: models.ListAction{
				ActionType:    "add_fighter",
				User:          "nox",
				Description:   "Hired Scrag",
				RatingBefore:  70,
				RatingAfter:   120,
				CreditsBefore: 100,
				CreditsAfter:  50,
				CreditsDelta:  -50,
				DiceRolls:     "[4,6]",
			},
			want: "[Sump Rats] add_fighter by nox: Hired Scrag (rating 70 -> 120) (credits 100 -> 50) rolls=[4,6]",
		},
		{
			name:   "minimal",
			action: models.ListAction{ActionType: "recalc"},
			want:   "[Sump Rats] recalc",
		},
		{
			name: "stash",
			action: models.ListAction{
				ActionType:  "assign_equipment",
				StashBefore: 10,
				StashAfter:  30,
			},
			want: "[Sump Rats] assign_equipment (stash 10 -> 30)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format("Sump Rats", &tt.action); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublishFansOut(t *testing.T) {
	md := &mockDiscord{}
	ms := &mockSlack{}
	dp, err := NewDiscord(DiscordOpts{ChannelID: "C1", Session: md})
	if err != nil {
		t.Fatalf("NewDiscord() error: %v", err)
	}
	sp, err := NewSlack(SlackOpts{ChannelID: "C2", Client: ms})
	if err != nil {
		t.Fatalf("NewSlack() error: %v", err)
	}

	f := New(dp, sp)
	f.Publish("Sump Rats", &models.ListAction{ActionType: "add_fighter", User: "nox"})

	if len(md.sent) != 1 {
		t.Errorf("discord received %d messages, want 1", len(md.sent))
	}
	if ms.calls != 1 {
		t.Errorf("slack received %d messages, want 1", ms.calls)
	}
}

func TestPublishBestEffort(t *testing.T) {
	md := &mockDiscord{err: errors.New("discord down")}
	ms := &mockSlack{}
	dp, _ := NewDiscord(DiscordOpts{ChannelID: "C1", Session: md})
	sp, _ := NewSlack(SlackOpts{ChannelID: "C2", Client: ms})

	// A failing destination must not stop delivery to the others.
	f := New(dp, sp)
	f.Publish("Sump Rats", &models.ListAction{ActionType: "recalc"})

	if ms.calls != 1 {
		t.Errorf("slack received %d messages after discord failure, want 1", ms.calls)
	}
}

func TestPublishNilAction(t *testing.T) {
	md := &mockDiscord{}
	dp, _ := NewDiscord(DiscordOpts{ChannelID: "C1", Session: md})
	New(dp).Publish("Sump Rats", nil)
	if len(md.sent) != 0 {
		t.Errorf("published %d messages for nil action, want 0", len(md.sent))
	}
}

func TestNewPosterValidation(t *testing.T) {
	if _, err := NewDiscord(DiscordOpts{BotToken: "tok"}); err == nil {
		t.Error("NewDiscord() without channel succeeded")
	}
	if _, err := NewDiscord(DiscordOpts{ChannelID: "C1"}); err == nil {
		t.Error("NewDiscord() without token or session succeeded")
	}
	if _, err := NewSlack(SlackOpts{BotToken: "tok"}); err == nil {
		t.Error("NewSlack() without channel succeeded")
	}
	if _, err := NewSlack(SlackOpts{ChannelID: "C1"}); err == nil {
		t.Error("NewSlack() without token or client succeeded")
	}
}
