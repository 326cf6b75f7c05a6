package webserver

import (
	"errors"
	"net/http"

	"github.com/commonhall/agora/src/shared/data"
	"github.com/commonhall/agora/src/shared/types"
	"github.com/gin-gonic/gin"
)

type Proposals struct{ store *data.ProposalStore }

func NewProposals(store *data.ProposalStore) Proposals { return Proposals{store: store} }

// List returns proposals filtered by type and/or status. Without filters it
// lists the currently voting proposals.
func (p Proposals) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !validStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad status"})
		return
	}

	var (
		out []types.Proposal
		err error
	)
	if proposalType := c.Query("type"); proposalType != "" {
		out, err = p.store.ByType(proposalType)
		if err == nil && status != "" {
			filtered := out[:0]
			for _, prop := range out {
				if prop.Status == status {
					filtered = append(filtered, prop)
				}
			}
			out = filtered
		}
	} else {
		if status == "" {
			status = types.StatusVoting
		}
		out, err = p.store.ByStatus(status)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if out == nil {
		out = []types.Proposal{}
	}
	c.JSON(http.StatusOK, out)
}

func (p Proposals) Get(c *gin.Context) {
	proposal, err := p.store.ByVoteMessage(c.Param("id"))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, proposal)
}

func validStatus(s string) bool {
	switch s {
	case types.StatusVoting, types.StatusPassed, types.StatusFailed:
		return true
	}
	return false
}
