package lifecycle

import (
	"time"

	"github.com/commonhall/agora/src/shared/types"
)

// StatusNone labels the pre-proposal state in transition records. It never
// appears in the store; debate-phase candidates are not persisted.
const StatusNone = "none"

// retentionPeriod feeds the storage-layer expiry hint on new proposals.
const retentionPeriod = 90 * 24 * time.Hour

// OptionCount is the raw reaction state of one vote option.
type OptionCount struct {
	Count int
	// Me reports whether the bot's own seed reaction is included in Count.
	Me bool
}

// ChannelMessage is a platform message as seen by the engine.
type ChannelMessage struct {
	ID        string
	ChannelID string
	Content   string
}

// Messenger is the platform collaborator. The discord component implements
// it over a live session; tests substitute a fake.
type Messenger interface {
	PostMessage(channelID, content string) (string, error)
	EditMessage(channelID, messageID, content string) error
	DeleteMessage(channelID, messageID string) error
	AddReaction(channelID, messageID, emoji string) error
	RawCounts(channelID, messageID string) (map[string]OptionCount, error)
	RecentMessages(channelID string, limit int) ([]ChannelMessage, error)
	Reply(channelID, messageID, content string) error
	ApplyRole(memberID string, add bool) error
}

// Store is the persistence surface the engine needs. Create and Complete
// carry compare-and-set semantics: Create fails with ErrAlreadyExists when
// the candidate already advanced, Complete with ErrNotVoting when the
// proposal already left the voting state.
type Store interface {
	Create(p *types.Proposal) error
	ByVoteMessage(voteMessageID string) (*types.Proposal, error)
	ByOriginalMessage(originalMessageID string) (*types.Proposal, error)
	UpdateVotes(voteMessageID string, yes, no int) error
	Complete(voteMessageID, status string, finalYes, finalNo int, at time.Time) error
	ByStatus(status string) ([]types.Proposal, error)
}

// TransitionFunc receives a state-change record for external observability.
type TransitionFunc func(messageID, from, to string)
