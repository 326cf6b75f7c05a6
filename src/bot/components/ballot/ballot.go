package ballot

import (
	"fmt"
	"strings"
	"time"

	"github.com/commonhall/agora/src/shared/types"
	"github.com/microcosm-cc/bluemonday"
)

// Reaction options. The support emoji accumulates on debate-phase posts;
// yes/no are seeded on the voting-phase post.
const (
	EmojiSupport = "\U0001F44D" // thumbs up
	EmojiYes     = "✅"     // white check mark
	EmojiNo      = "❌"     // cross mark
)

// sanitizer strips markup from user-authored content before it is
// re-published into the resolutions channel.
var sanitizer = bluemonday.StrictPolicy()

// ComposeVote renders the voting-phase message. Pure: the deadline comes
// from the proposal's fixed EndTime, so re-rendering with the same inputs
// yields the same text.
func ComposeVote(p *types.Proposal, t *types.ProposalType) string {
	var b strings.Builder

	if p.IsWithdrawal {
		fmt.Fprintf(&b, "**Vote: withdrawal of a %s resolution**\n", t.Name)
	} else {
		fmt.Fprintf(&b, "**Vote: %s proposal**\n", t.Name)
	}
	fmt.Fprintf(&b, "Proposed by <@%s>\n\n", p.AuthorID)
	b.WriteString(quote(p.Content))
	fmt.Fprintf(&b, "\n\nReact with %s to vote in favour or %s to vote against.\n", EmojiYes, EmojiNo)
	fmt.Fprintf(&b, "Voting closes <t:%d:F>.", p.EndTime.Unix())

	return b.String()
}

// AppendResult adds the outcome block to the voting-phase message text.
func AppendResult(voteText string, passed bool, yes, no int) string {
	outcome := "Failed"
	if passed {
		outcome = "Passed"
	}
	return fmt.Sprintf("%s\n\n**Voting closed: %s** (%s %d / %s %d)", voteText, outcome, EmojiYes, yes, EmojiNo, no)
}

// ComposeResolution renders the permanent resolution record for a passed,
// non-withdrawal proposal.
func ComposeResolution(p *types.Proposal, t *types.ProposalType) string {
	completed := time.Now()
	if p.CompletedAt != nil {
		completed = *p.CompletedAt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Resolution: %s**\n", t.Name)
	fmt.Fprintf(&b, "Proposed by <@%s>, passed <t:%d:F> (%s %d / %s %d)\n\n",
		p.AuthorID, completed.Unix(), EmojiYes, p.FinalYes, EmojiNo, p.FinalNo)
	b.WriteString(quote(sanitizer.Sanitize(p.Content)))
	return b.String()
}

// ComposeWithdrawalNotice renders the record left in the resolutions channel
// after a withdrawn resolution's post has been deleted.
func ComposeWithdrawalNotice(p *types.Proposal) string {
	var b strings.Builder
	b.WriteString("**Resolution withdrawn**\n")
	fmt.Fprintf(&b, "Withdrawal proposed by <@%s> and passed (%s %d / %s %d). The withdrawn resolution read:\n\n",
		p.AuthorID, EmojiYes, p.FinalYes, EmojiNo, p.FinalNo)
	b.WriteString(quote(sanitizer.Sanitize(p.TargetContent)))
	return b.String()
}

// MarkMoved annotates the debate-phase post once its proposal has advanced
// to voting.
func MarkMoved(original, voteChannelID string) string {
	return fmt.Sprintf("%s\n\n*This proposal has moved to a vote in <#%s>.*", original, voteChannelID)
}

func quote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
