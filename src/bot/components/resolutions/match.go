package resolutions

import (
	"strings"
)

// keywordOverlapThreshold is the fraction of a withdrawal reference's
// keywords that must appear among a resolution's words for strategy three
// to accept the match.
const keywordOverlapThreshold = 0.6

// minKeywordLen excludes short filler words from keyword scoring.
const minKeywordLen = 3

// Post is a candidate resolution post from the resolutions channel.
type Post struct {
	MessageID string
	ChannelID string
	Content   string
}

// MatchTarget locates the resolution a withdrawal refers to. Three
// strategies run in order over the candidate list, accepting the first
// post any strategy matches: verbatim containment, containment against the
// extracted policy text, then keyword-overlap scoring. This is a heuristic,
// not a key lookup; a nil result means no candidate was close enough.
func MatchTarget(reference string, posts []Post) *Post {
	ref := strings.ToLower(strings.TrimSpace(reference))
	if ref == "" {
		return nil
	}

	for i := range posts {
		if strings.Contains(strings.ToLower(posts[i].Content), ref) {
			return &posts[i]
		}
	}

	for i := range posts {
		policy := strings.ToLower(ExtractPolicyText(posts[i].Content))
		if policy == "" {
			continue
		}
		if strings.Contains(policy, ref) || strings.Contains(ref, policy) {
			return &posts[i]
		}
	}

	refWords := keywords(ref)
	if len(refWords) == 0 {
		return nil
	}
	for i := range posts {
		if keywordOverlap(refWords, keywords(strings.ToLower(posts[i].Content))) >= keywordOverlapThreshold {
			return &posts[i]
		}
	}

	return nil
}

// ExtractPolicyText pulls the quoted policy block out of a resolution post.
func ExtractPolicyText(content string) string {
	var quoted []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "> ") {
			quoted = append(quoted, strings.TrimPrefix(line, "> "))
		}
	}
	return strings.Join(quoted, "\n")
}

// keywordOverlap returns the fraction of ref keywords that appear as a
// substring of at least one candidate word.
func keywordOverlap(ref, candidate []string) float64 {
	if len(ref) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range ref {
		for _, w := range candidate {
			if strings.Contains(w, kw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(ref))
}

func keywords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	out := words[:0]
	for _, w := range words {
		if len(w) > minKeywordLen {
			out = append(out, w)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '\'' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || r > 127
}
