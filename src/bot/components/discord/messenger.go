package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/commonhall/agora/src/bot/components/lifecycle"
)

type MessengerConfig struct {
	Session         *discordgo.Session
	GuildID         string
	ModeratorRoleID string
}

// Messenger adapts a discordgo session to the lifecycle engine's platform
// interface.
type Messenger struct {
	session *discordgo.Session
	guildID string
	roleID  string
}

func NewMessenger(config MessengerConfig) *Messenger {
	return &Messenger{
		session: config.Session,
		guildID: config.GuildID,
		roleID:  config.ModeratorRoleID,
	}
}

func (m *Messenger) PostMessage(channelID, content string) (string, error) {
	msg, err := m.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *Messenger) EditMessage(channelID, messageID, content string) error {
	_, err := m.session.ChannelMessageEdit(channelID, messageID, content)
	return err
}

func (m *Messenger) DeleteMessage(channelID, messageID string) error {
	return m.session.ChannelMessageDelete(channelID, messageID)
}

func (m *Messenger) AddReaction(channelID, messageID, emoji string) error {
	return m.session.MessageReactionAdd(channelID, messageID, emoji)
}

// RawCounts reads the live per-emoji reaction state of a message, including
// whether the bot's own seed reaction is part of each count.
func (m *Messenger) RawCounts(channelID, messageID string) (map[string]lifecycle.OptionCount, error) {
	msg, err := m.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]lifecycle.OptionCount, len(msg.Reactions))
	for _, r := range msg.Reactions {
		counts[r.Emoji.Name] = lifecycle.OptionCount{Count: r.Count, Me: r.Me}
	}
	return counts, nil
}

func (m *Messenger) RecentMessages(channelID string, limit int) ([]lifecycle.ChannelMessage, error) {
	msgs, err := m.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, err
	}
	out := make([]lifecycle.ChannelMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = lifecycle.ChannelMessage{ID: msg.ID, ChannelID: msg.ChannelID, Content: msg.Content}
	}
	return out, nil
}

func (m *Messenger) Reply(channelID, messageID, content string) error {
	_, err := m.session.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   m.guildID,
	})
	return err
}

// ApplyRole adds or removes the moderator role. The underlying endpoints
// are idempotent: granting a held role or removing an absent one succeeds.
func (m *Messenger) ApplyRole(memberID string, add bool) error {
	if add {
		return m.session.GuildMemberRoleAdd(m.guildID, memberID, m.roleID)
	}
	return m.session.GuildMemberRoleRemove(m.guildID, memberID, m.roleID)
}
