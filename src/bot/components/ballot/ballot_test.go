package ballot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/commonhall/agora/src/shared/types"
)

func sampleProposal() (*types.Proposal, *types.ProposalType) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &types.Proposal{
		AuthorID:     "1001",
		Content:      "Proposal: plant a community garden\nwith a shared tool shed",
		ProposalType: "policy",
		EndTime:      end,
	}
	t := &types.ProposalType{Name: "policy"}
	return p, t
}

func TestComposeVote(t *testing.T) {
	p, typ := sampleProposal()

	t.Run("re-renders identically", func(t *testing.T) {
		if ComposeVote(p, typ) != ComposeVote(p, typ) {
			t.Error("compose is not deterministic")
		}
	})

	t.Run("embeds author, content and deadline", func(t *testing.T) {
		text := ComposeVote(p, typ)
		for _, want := range []string{
			"<@1001>",
			"policy",
			"> Proposal: plant a community garden",
			"> with a shared tool shed",
			fmt.Sprintf("<t:%d:F>", p.EndTime.Unix()),
			EmojiYes,
			EmojiNo,
		} {
			if !strings.Contains(text, want) {
				t.Errorf("vote message missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("flags withdrawals", func(t *testing.T) {
		p2 := *p
		p2.IsWithdrawal = true
		if !strings.Contains(ComposeVote(&p2, typ), "withdrawal") {
			t.Error("withdrawal vote message should say so")
		}
	})
}

func TestAppendResult(t *testing.T) {
	base := "vote text"

	passed := AppendResult(base, true, 5, 2)
	if !strings.HasPrefix(passed, base) {
		t.Error("result must append to the original vote text")
	}
	if !strings.Contains(passed, "Passed") || !strings.Contains(passed, "5") || !strings.Contains(passed, "2") {
		t.Errorf("unexpected result block: %s", passed)
	}

	failed := AppendResult(base, false, 2, 2)
	if !strings.Contains(failed, "Failed") {
		t.Errorf("unexpected result block: %s", failed)
	}
}

func TestComposeResolution(t *testing.T) {
	p, typ := sampleProposal()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	p.CompletedAt = &now
	p.FinalYes = 4
	p.FinalNo = 1

	text := ComposeResolution(p, typ)
	for _, want := range []string{"Resolution", "policy", "<@1001>", "community garden", "4", "1"} {
		if !strings.Contains(text, want) {
			t.Errorf("resolution record missing %q:\n%s", want, text)
		}
	}
}

func TestComposeResolutionSanitizesContent(t *testing.T) {
	p, typ := sampleProposal()
	p.Content = `Proposal: install <script>alert("x")</script> kiosks`

	text := ComposeResolution(p, typ)
	if strings.Contains(text, "<script>") {
		t.Errorf("markup survived sanitization:\n%s", text)
	}
	if !strings.Contains(text, "kiosks") {
		t.Errorf("content lost in sanitization:\n%s", text)
	}
}

func TestComposeWithdrawalNotice(t *testing.T) {
	p, _ := sampleProposal()
	p.TargetContent = "the old garden resolution"
	p.FinalYes = 3
	p.FinalNo = 1

	text := ComposeWithdrawalNotice(p)
	if !strings.Contains(text, "withdrawn") || !strings.Contains(text, "the old garden resolution") {
		t.Errorf("unexpected notice:\n%s", text)
	}
}

func TestMarkMoved(t *testing.T) {
	text := MarkMoved("Proposal: something", "chan-42")
	if !strings.HasPrefix(text, "Proposal: something") {
		t.Error("original content must be preserved")
	}
	if !strings.Contains(text, "<#chan-42>") {
		t.Errorf("missing vote channel reference: %s", text)
	}
}
