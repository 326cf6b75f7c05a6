package data

import (
	"errors"
	"time"

	"github.com/commonhall/agora/src/shared/types"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyExists is returned when a proposal for the same debate-phase
	// message has already been created.
	ErrAlreadyExists = errors.New("proposal already exists")
	// ErrNotFound is returned when no proposal matches the key.
	ErrNotFound = errors.New("proposal not found")
	// ErrNotVoting is returned by conditional updates when the proposal has
	// already left the voting state.
	ErrNotVoting = errors.New("proposal is not voting")
)

// ProposalStore wraps gorm with the conditional writes the lifecycle engine
// relies on. Creation and finalization are guarded by the database, not by
// read-then-write checks, so retried signals are absorbed.
type ProposalStore struct {
	db *gorm.DB
}

func NewProposalStore(db *gorm.DB) *ProposalStore {
	return &ProposalStore{db: db}
}

// Create inserts a new proposal. The unique index on original_message_id
// makes a duplicate advance for the same candidate fail with
// ErrAlreadyExists regardless of interleaving.
func (s *ProposalStore) Create(p *types.Proposal) error {
	err := s.db.Create(p).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

func (s *ProposalStore) ByVoteMessage(voteMessageID string) (*types.Proposal, error) {
	var p types.Proposal
	err := s.db.First(&p, "vote_message_id = ?", voteMessageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProposalStore) ByOriginalMessage(originalMessageID string) (*types.Proposal, error) {
	var p types.Proposal
	err := s.db.First(&p, "original_message_id = ?", originalMessageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateVotes persists the current tally. The status guard in the WHERE
// clause keeps counts immutable once the proposal is finalized.
func (s *ProposalStore) UpdateVotes(voteMessageID string, yes, no int) error {
	res := s.db.Model(&types.Proposal{}).
		Where("vote_message_id = ? AND status = ?", voteMessageID, types.StatusVoting).
		Updates(map[string]interface{}{"yes_votes": yes, "no_votes": no})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotVoting
	}
	return nil
}

// Complete transitions a proposal out of voting exactly once. A second
// finalize attempt matches no rows and reports ErrNotVoting.
func (s *ProposalStore) Complete(voteMessageID, status string, finalYes, finalNo int, at time.Time) error {
	res := s.db.Model(&types.Proposal{}).
		Where("vote_message_id = ? AND status = ?", voteMessageID, types.StatusVoting).
		Updates(map[string]interface{}{
			"status":       status,
			"final_yes":    finalYes,
			"final_no":     finalNo,
			"completed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotVoting
	}
	return nil
}

func (s *ProposalStore) ByStatus(status string) ([]types.Proposal, error) {
	var out []types.Proposal
	err := s.db.Where("status = ?", status).Order("end_time ASC").Find(&out).Error
	return out, err
}

func (s *ProposalStore) ByType(proposalType string) ([]types.Proposal, error) {
	var out []types.Proposal
	err := s.db.Where("proposal_type = ?", proposalType).Order("start_time DESC").Find(&out).Error
	return out, err
}
