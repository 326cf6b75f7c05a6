package lifecycle

import (
	"testing"
	"time"

	"github.com/commonhall/agora/src/shared/types"
)

func TestNextWake(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no deadlines", func(t *testing.T) {
		if _, ok := NextWake(nil); ok {
			t.Error("expected no wake time")
		}
	})

	t.Run("earliest of several", func(t *testing.T) {
		deadlines := []time.Time{
			base.Add(3 * time.Hour),
			base.Add(1 * time.Hour),
			base.Add(2 * time.Hour),
		}
		got, ok := NextWake(deadlines)
		if !ok || !got.Equal(base.Add(1*time.Hour)) {
			t.Errorf("NextWake = %v %v, want %v", got, ok, base.Add(1*time.Hour))
		}
	})

	t.Run("recomputes after the earliest is gone", func(t *testing.T) {
		remaining := []time.Time{
			base.Add(3 * time.Hour),
			base.Add(2 * time.Hour),
		}
		got, ok := NextWake(remaining)
		if !ok || !got.Equal(base.Add(2*time.Hour)) {
			t.Errorf("NextWake = %v %v, want %v", got, ok, base.Add(2*time.Hour))
		}
	})
}

func TestSchedulerWakesAtEarliestDeadline(t *testing.T) {
	rig := newTestRig(t)

	// Three proposals with distinct deadlines.
	now := rig.now
	for i, end := range []time.Time{
		now.Add(3 * time.Hour),
		now.Add(1 * time.Hour),
		now.Add(2 * time.Hour),
	} {
		id := string(rune('a' + i))
		rig.store.byVote[id] = &types.Proposal{
			VoteMessageID: id,
			ProposalType:  "policy",
			Status:        types.StatusVoting,
			EndTime:       end,
		}
	}

	if got := rig.engine.sched.nextDelay(); got != time.Hour {
		t.Errorf("nextDelay = %v, want exactly 1h", got)
	}

	// Once the earliest proposal is gone, the wake time moves to the next
	// remaining minimum.
	delete(rig.store.byVote, "b")
	if got := rig.engine.sched.nextDelay(); got != 2*time.Hour {
		t.Errorf("nextDelay = %v, want 2h", got)
	}
}

func TestSchedulerFallsBackWhenIdle(t *testing.T) {
	rig := newTestRig(t)
	if got := rig.engine.sched.nextDelay(); got != idleRecheck {
		t.Errorf("nextDelay = %v, want %v", got, idleRecheck)
	}
}

func TestSchedulerFinalizesAllDueProposals(t *testing.T) {
	rig := newTestRig(t)
	now := rig.now

	for _, id := range []string{"a", "b"} {
		rig.store.byVote[id] = &types.Proposal{
			VoteMessageID: id,
			VoteChannelID: "vote",
			ProposalType:  "policy",
			Status:        types.StatusVoting,
			EndTime:       now.Add(-time.Minute),
			YesVotes:      1,
		}
	}
	rig.store.byVote["later"] = &types.Proposal{
		VoteMessageID: "later",
		VoteChannelID: "vote",
		ProposalType:  "policy",
		Status:        types.StatusVoting,
		EndTime:       now.Add(time.Hour),
	}

	rig.engine.FinalizeDue()

	for _, id := range []string{"a", "b"} {
		p, _ := rig.store.ByVoteMessage(id)
		if p.Status == types.StatusVoting {
			t.Errorf("proposal %s not finalized", id)
		}
	}
	p, _ := rig.store.ByVoteMessage("later")
	if p.Status != types.StatusVoting {
		t.Errorf("future proposal finalized early: %q", p.Status)
	}
}
