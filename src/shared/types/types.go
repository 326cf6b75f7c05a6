package types

import (
	"strings"
	"time"
)

// Proposal statuses.
const (
	StatusVoting = "voting"
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Proposal types
type ProposalType struct {
	Name                 string `gorm:"primaryKey;size:32"`
	DebateChannelID      string `gorm:"size:64;unique;not null"`
	VoteChannelID        string `gorm:"size:64;not null"`
	ResolutionsChannelID string `gorm:"size:64;not null"`
	SupportThreshold     int    `gorm:"not null;default:3"`
	VoteDurationMinutes  int    `gorm:"not null;default:1440"`
	Markers              string `gorm:"size:256;not null"` // comma separated, e.g. "Proposal,Motion"
	ModeratorAction      bool   `gorm:"default:false"`
}

// MarkerList splits the comma-separated marker column.
func (t ProposalType) MarkerList() []string {
	parts := strings.Split(t.Markers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// VoteDuration returns the voting period as a duration.
func (t ProposalType) VoteDuration() time.Duration {
	return time.Duration(t.VoteDurationMinutes) * time.Minute
}

// Proposals in or past their voting phase. Debate-phase candidates are never
// persisted; they are derived from channel history on demand.
type Proposal struct {
	VoteMessageID     string `gorm:"primaryKey;size:64"`
	VoteChannelID     string `gorm:"size:64;not null"`
	OriginalMessageID string `gorm:"size:64;uniqueIndex;not null"`
	OriginalChannelID string `gorm:"size:64;not null"`
	AuthorID          string `gorm:"size:64;not null"`
	Content           string `gorm:"type:text;not null"`
	ProposalType      string `gorm:"size:32;index;not null"`
	IsWithdrawal      bool   `gorm:"default:false"`
	TargetMessageID   string `gorm:"size:64"`
	TargetChannelID   string `gorm:"size:64"`
	TargetContent     string `gorm:"type:text"`
	Status            string `gorm:"size:16;index;not null"`
	StartTime         time.Time
	EndTime           time.Time
	CompletedAt       *time.Time
	YesVotes          int `gorm:"default:0"`
	NoVotes           int `gorm:"default:0"`
	FinalYes          int `gorm:"default:0"`
	FinalNo           int `gorm:"default:0"`
	// Storage retention hint only; never read by the engine.
	ExpiresAt time.Time `gorm:"index"`
}

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}
