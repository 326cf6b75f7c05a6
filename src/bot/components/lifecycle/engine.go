package lifecycle

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/commonhall/agora/src/bot/components/ballot"
	"github.com/commonhall/agora/src/bot/components/classify"
	"github.com/commonhall/agora/src/bot/components/moderator"
	"github.com/commonhall/agora/src/bot/components/resolutions"
	"github.com/commonhall/agora/src/bot/components/tally"
	"github.com/commonhall/agora/src/shared/data"
	"github.com/commonhall/agora/src/shared/types"
)

// resolutionScanWindow bounds how many recent resolution posts a withdrawal
// target search considers.
const resolutionScanWindow = 100

type Config struct {
	Store        Store
	Messenger    Messenger
	Classifier   *classify.Classifier
	Types        map[string]*types.ProposalType
	OnTransition TransitionFunc
	Now          func() time.Time
}

// Engine owns proposal state and drives every transition. Operations
// serialize on an internal mutex; the store's conditional writes remain the
// cross-process idempotence guard.
type Engine struct {
	store       Store
	messenger   Messenger
	classifier  *classify.Classifier
	typesByName map[string]*types.ProposalType
	transition  TransitionFunc
	now         func() time.Time
	sched       *Scheduler
	mu          sync.Mutex
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		store:       cfg.Store,
		messenger:   cfg.Messenger,
		classifier:  cfg.Classifier,
		typesByName: cfg.Types,
		transition:  cfg.OnTransition,
		now:         cfg.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.transition == nil {
		e.transition = func(string, string, string) {}
	}
	e.sched = newScheduler(e)
	return e
}

// StartScheduler arms the deadline timer. Called once the platform session
// is ready.
func (e *Engine) StartScheduler() {
	e.sched.Start()
}

// StopScheduler cancels the armed timer during shutdown.
func (e *Engine) StopScheduler() {
	e.sched.Stop()
}

// HandleSupportSignal advances a debate-phase candidate to voting once its
// support count reaches the type's threshold. Duplicate signals for an
// already-advanced candidate are absorbed.
func (e *Engine) HandleSupportSignal(channelID, messageID, authorID, content string, rawSupport int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Cheap early out; the store's conditional create is the real guard.
	if _, err := e.store.ByOriginalMessage(messageID); err == nil {
		return nil
	}

	match := e.classifier.Classify(channelID, content)
	if match == nil {
		return nil
	}
	if rawSupport < match.Type.SupportThreshold {
		return nil
	}

	return e.advance(channelID, messageID, authorID, content, match)
}

// ForceAdvance moves a classified candidate to voting regardless of its
// support count. Issued by moderators; the idempotence guard still applies.
func (e *Engine) ForceAdvance(channelID, messageID, authorID, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.ByOriginalMessage(messageID); err == nil {
		return nil
	}

	match := e.classifier.Classify(channelID, content)
	if match == nil {
		if err := e.messenger.Reply(channelID, messageID,
			"This message does not carry a proposal marker for this channel."); err != nil {
			log.Printf("lifecycle: notify moderator of unclassified candidate: %v", err)
		}
		return nil
	}

	return e.advance(channelID, messageID, authorID, content, match)
}

func (e *Engine) advance(channelID, messageID, authorID, content string, match *classify.Match) error {
	t := match.Type
	now := e.now()
	p := &types.Proposal{
		OriginalMessageID: messageID,
		OriginalChannelID: channelID,
		AuthorID:          authorID,
		Content:           content,
		ProposalType:      t.Name,
		IsWithdrawal:      match.IsWithdrawal,
		Status:            types.StatusVoting,
		StartTime:         now,
		EndTime:           now.Add(t.VoteDuration()),
		ExpiresAt:         now.Add(retentionPeriod),
	}

	if match.IsWithdrawal {
		target, err := e.findWithdrawalTarget(content, t)
		if err != nil {
			log.Printf("lifecycle: withdrawal target scan for %s: %v", messageID, err)
			return err
		}
		if target == nil {
			if err := e.messenger.Reply(channelID, messageID,
				"Could not find a passed resolution matching this withdrawal. Quote the resolution text more closely and try again."); err != nil {
				log.Printf("lifecycle: notify author of unmatched withdrawal: %v", err)
			}
			return nil
		}
		p.TargetMessageID = target.MessageID
		p.TargetChannelID = target.ChannelID
		p.TargetContent = target.Content
	}

	voteText := ballot.ComposeVote(p, t)
	voteMessageID, err := e.messenger.PostMessage(t.VoteChannelID, voteText)
	if err != nil {
		return fmt.Errorf("post vote message: %w", err)
	}
	p.VoteMessageID = voteMessageID
	p.VoteChannelID = t.VoteChannelID

	for _, emoji := range []string{ballot.EmojiYes, ballot.EmojiNo} {
		if err := e.messenger.AddReaction(t.VoteChannelID, voteMessageID, emoji); err != nil {
			log.Printf("lifecycle: seed vote option %s on %s: %v", emoji, voteMessageID, err)
		}
	}

	if err := e.store.Create(p); err != nil {
		// A concurrent signal won the race; drop our duplicate vote post.
		if errors.Is(err, data.ErrAlreadyExists) {
			if derr := e.messenger.DeleteMessage(t.VoteChannelID, voteMessageID); derr != nil {
				log.Printf("lifecycle: remove duplicate vote message %s: %v", voteMessageID, derr)
			}
			return nil
		}
		if derr := e.messenger.DeleteMessage(t.VoteChannelID, voteMessageID); derr != nil {
			log.Printf("lifecycle: remove orphaned vote message %s: %v", voteMessageID, derr)
		}
		return fmt.Errorf("persist proposal: %w", err)
	}

	e.transition(voteMessageID, StatusNone, types.StatusVoting)
	log.Printf("lifecycle: proposal %s (%s) entered voting until %s", voteMessageID, t.Name, p.EndTime.Format(time.RFC3339))

	// A new deadline exists and may be sooner than the one armed.
	e.sched.Reschedule()

	if err := e.messenger.EditMessage(channelID, messageID, ballot.MarkMoved(content, t.VoteChannelID)); err != nil {
		log.Printf("lifecycle: mark debate post %s as moved: %v", messageID, err)
	}

	return nil
}

// HandleVoteSignal re-tallies a voting-phase proposal from the raw reaction
// state. Signals on finalized or expired proposals are ignored.
func (e *Engine) HandleVoteSignal(voteMessageID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.ByVoteMessage(voteMessageID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil
		}
		return err
	}
	if p.Status != types.StatusVoting || !e.now().Before(p.EndTime) {
		return nil
	}

	yes, no, err := e.currentTally(p)
	if err != nil {
		log.Printf("lifecycle: read vote counts for %s: %v", voteMessageID, err)
		return nil
	}

	if err := e.store.UpdateVotes(voteMessageID, yes, no); err != nil && !errors.Is(err, data.ErrNotVoting) {
		return fmt.Errorf("persist vote counts: %w", err)
	}
	return nil
}

// FinalizeDue finalizes every voting proposal whose deadline has passed,
// each independently so one failure does not starve the rest.
func (e *Engine) FinalizeDue() {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.store.ByStatus(types.StatusVoting)
	if err != nil {
		log.Printf("lifecycle: list voting proposals: %v", err)
		return
	}

	now := e.now()
	for i := range active {
		p := &active[i]
		if p.EndTime.After(now) {
			continue
		}
		if err := e.finalize(p); err != nil {
			log.Printf("lifecycle: finalize %s: %v", p.VoteMessageID, err)
		}
	}
}

func (e *Engine) finalize(p *types.Proposal) error {
	// Capture last-moment reaction changes; fall back to the persisted
	// counts when the platform read fails so finalization never wedges.
	yes, no, err := e.currentTally(p)
	if err != nil {
		log.Printf("lifecycle: re-tally %s, using stored counts: %v", p.VoteMessageID, err)
		yes, no = p.YesVotes, p.NoVotes
	}

	passed := tally.Decide(yes, no)
	status := types.StatusFailed
	if passed {
		status = types.StatusPassed
	}

	completedAt := e.now()
	if err := e.store.Complete(p.VoteMessageID, status, yes, no, completedAt); err != nil {
		if errors.Is(err, data.ErrNotVoting) {
			// A concurrent finalize already moved it.
			return nil
		}
		return fmt.Errorf("complete proposal: %w", err)
	}

	p.Status = status
	p.FinalYes = yes
	p.FinalNo = no
	p.CompletedAt = &completedAt
	e.transition(p.VoteMessageID, types.StatusVoting, status)
	log.Printf("lifecycle: proposal %s finalized %s (%d/%d)", p.VoteMessageID, status, yes, no)

	t := e.typesByName[p.ProposalType]
	if t == nil {
		log.Printf("lifecycle: no type config %q for finalized proposal %s", p.ProposalType, p.VoteMessageID)
		return nil
	}

	// The persisted status is the source of truth; rendering is best effort.
	result := ballot.AppendResult(ballot.ComposeVote(p, t), passed, yes, no)
	if err := e.messenger.EditMessage(p.VoteChannelID, p.VoteMessageID, result); err != nil {
		log.Printf("lifecycle: append result to %s: %v", p.VoteMessageID, err)
	}

	if !passed {
		return nil
	}

	switch {
	case p.IsWithdrawal:
		e.applyWithdrawal(p, t)
	case t.ModeratorAction:
		e.applyModeratorAction(p)
	default:
		if _, err := e.messenger.PostMessage(t.ResolutionsChannelID, ballot.ComposeResolution(p, t)); err != nil {
			log.Printf("lifecycle: publish resolution for %s: %v", p.VoteMessageID, err)
		}
	}
	return nil
}

func (e *Engine) applyWithdrawal(p *types.Proposal, t *types.ProposalType) {
	if err := e.messenger.DeleteMessage(p.TargetChannelID, p.TargetMessageID); err != nil {
		log.Printf("lifecycle: delete withdrawn resolution %s: %v", p.TargetMessageID, err)
	}
	if _, err := e.messenger.PostMessage(t.ResolutionsChannelID, ballot.ComposeWithdrawalNotice(p)); err != nil {
		log.Printf("lifecycle: publish withdrawal notice for %s: %v", p.VoteMessageID, err)
	}
}

// applyModeratorAction applies the role change a passed moderator proposal
// directs. Failure is logged without reverting the passed status.
func (e *Engine) applyModeratorAction(p *types.Proposal) {
	d := moderator.Parse(p.Content)
	if d == nil {
		log.Printf("lifecycle: passed moderator proposal %s has no parseable directive", p.VoteMessageID)
		if err := e.messenger.Reply(p.VoteChannelID, p.VoteMessageID,
			"This proposal passed, but no moderator directive could be parsed from it. Use \"add moderator @member\" or \"remove moderator @member\"."); err != nil {
			log.Printf("lifecycle: notify author of malformed directive: %v", err)
		}
		return
	}

	if err := e.messenger.ApplyRole(d.MemberID, d.Add); err != nil {
		log.Printf("lifecycle: apply moderator change for %s (add=%v) on proposal %s: %v", d.MemberID, d.Add, p.VoteMessageID, err)
		return
	}
	verb := "granted to"
	if !d.Add {
		verb = "removed from"
	}
	log.Printf("lifecycle: moderator role %s %s per proposal %s", verb, d.MemberID, p.VoteMessageID)
}

func (e *Engine) findWithdrawalTarget(content string, t *types.ProposalType) (*resolutions.Post, error) {
	msgs, err := e.messenger.RecentMessages(t.ResolutionsChannelID, resolutionScanWindow)
	if err != nil {
		return nil, fmt.Errorf("fetch resolutions: %w", err)
	}
	posts := make([]resolutions.Post, len(msgs))
	for i, m := range msgs {
		posts[i] = resolutions.Post{MessageID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
	}
	return resolutions.MatchTarget(classify.StripWithdrawMarker(content), posts), nil
}

func (e *Engine) currentTally(p *types.Proposal) (int, int, error) {
	counts, err := e.messenger.RawCounts(p.VoteChannelID, p.VoteMessageID)
	if err != nil {
		return 0, 0, err
	}
	yesRaw := counts[ballot.EmojiYes]
	noRaw := counts[ballot.EmojiNo]
	return tally.Count(yesRaw.Count, yesRaw.Me), tally.Count(noRaw.Count, noRaw.Me), nil
}
