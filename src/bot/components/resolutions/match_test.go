package resolutions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTargetVerbatim(t *testing.T) {
	posts := []Post{
		{MessageID: "1", Content: "**Resolution: policy**\n> ban pineapple on pizza"},
		{MessageID: "2", Content: "**Resolution: policy**\n> plant a community garden"},
	}

	got := MatchTarget("plant a community garden", posts)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.MessageID)
}

func TestMatchTargetCaseInsensitive(t *testing.T) {
	posts := []Post{{MessageID: "1", Content: "> Ban Pineapple On Pizza"}}
	got := MatchTarget("ban pineapple on pizza", posts)
	require.NotNil(t, got)
}

func TestMatchTargetPolicyTextContainment(t *testing.T) {
	// The reference is longer than the quoted policy text, so verbatim
	// containment fails but the reversed policy-text check succeeds.
	posts := []Post{
		{MessageID: "1", Content: "**Resolution: policy**\nheader line\n> shared tool shed"},
	}
	got := MatchTarget("the resolution about the shared tool shed we passed in march", posts)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.MessageID)
}

func TestMatchTargetKeywordOverlap(t *testing.T) {
	// Reference keywords (> 3 letters): community, garden, budget,
	// allocation, framework. Five in total.
	reference := "community garden budget allocation framework"

	t.Run("60 percent shared matches", func(t *testing.T) {
		posts := []Post{{
			MessageID: "1",
			Content:   "Funds for the community garden budget were set aside",
		}}
		// community, garden, budget shared: 3/5 = 60%.
		got := MatchTarget(reference, posts)
		require.NotNil(t, got)
	})

	t.Run("one fewer shared word does not match", func(t *testing.T) {
		posts := []Post{{
			MessageID: "1",
			Content:   "Funds for the community garden were set aside",
		}}
		// community, garden shared: 2/5 = 40%.
		assert.Nil(t, MatchTarget(reference, posts))
	})
}

func TestMatchTargetStrategyOrder(t *testing.T) {
	// A later post with a verbatim match must not lose to an earlier post
	// that only matches by keyword overlap.
	posts := []Post{
		{MessageID: "fuzzy", Content: "garden and community budget discussions continue"},
		{MessageID: "exact", Content: "> community garden budget"},
	}
	got := MatchTarget("community garden budget", posts)
	require.NotNil(t, got)
	assert.Equal(t, "exact", got.MessageID)
}

func TestMatchTargetNoCandidates(t *testing.T) {
	assert.Nil(t, MatchTarget("anything", nil))
	assert.Nil(t, MatchTarget("", []Post{{MessageID: "1", Content: "something"}}))
}

func TestExtractPolicyText(t *testing.T) {
	content := "**Resolution: policy**\nPassed yesterday\n> line one\n> line two"
	assert.Equal(t, "line one\nline two", ExtractPolicyText(content))
	assert.Equal(t, "", ExtractPolicyText("no quoted block"))
}
