package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/commonhall/agora/src/shared/types"
)

// withdrawMarker is accepted in every debate channel regardless of the
// type's own markers.
const withdrawMarker = "Withdraw"

// Match is the result of classifying a debate-channel message.
type Match struct {
	Type         *types.ProposalType
	IsWithdrawal bool
}

type channelPatterns struct {
	typ      *types.ProposalType
	markers  *regexp.Regexp
	withdraw *regexp.Regexp
}

// Classifier maps debate channels to their proposal type and recognizes the
// type's markers. Built once at startup from the proposal_types table.
type Classifier struct {
	byChannel map[string]channelPatterns
}

func New(proposalTypes []types.ProposalType) (*Classifier, error) {
	c := &Classifier{byChannel: make(map[string]channelPatterns, len(proposalTypes))}

	for i := range proposalTypes {
		t := &proposalTypes[i]
		markers := t.MarkerList()
		if len(markers) == 0 {
			return nil, fmt.Errorf("proposal type %q has no markers", t.Name)
		}
		if _, dup := c.byChannel[t.DebateChannelID]; dup {
			return nil, fmt.Errorf("debate channel %s bound to more than one type", t.DebateChannelID)
		}

		quoted := make([]string, len(markers))
		for j, m := range markers {
			quoted[j] = regexp.QuoteMeta(m)
		}

		markerRe, err := regexp.Compile(`(?i)^\s*(` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("markers for type %q: %w", t.Name, err)
		}
		withdrawRe := regexp.MustCompile(`(?i)^\s*` + withdrawMarker + `\b`)

		c.byChannel[t.DebateChannelID] = channelPatterns{typ: t, markers: markerRe, withdraw: withdrawRe}
	}

	return c, nil
}

// HasChannel reports whether a channel is a configured debate channel.
func (c *Classifier) HasChannel(channelID string) bool {
	_, ok := c.byChannel[channelID]
	return ok
}

// Classify matches a message against the channel's proposal type. A nil
// result means the text is ordinary chat, not an error.
func (c *Classifier) Classify(channelID, text string) *Match {
	p, ok := c.byChannel[channelID]
	if !ok {
		return nil
	}
	if p.markers.MatchString(text) {
		return &Match{Type: p.typ}
	}
	if p.withdraw.MatchString(text) {
		return &Match{Type: p.typ, IsWithdrawal: true}
	}
	return nil
}

// StripWithdrawMarker removes the leading withdraw marker from a withdrawal
// proposal, leaving the reference text used for target matching.
func StripWithdrawMarker(text string) string {
	re := regexp.MustCompile(`(?i)^\s*` + withdrawMarker + `\b[:\s]*`)
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}
