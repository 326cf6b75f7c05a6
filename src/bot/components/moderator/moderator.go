package moderator

import (
	"regexp"
)

// Directive is a parsed moderator-role change from a passed proposal.
type Directive struct {
	Add      bool
	MemberID string
}

// Two fixed directive shapes; the member reference is a mention token or a
// raw numeric id.
var (
	addPattern    = regexp.MustCompile(`(?i)\badd\s+moderator\s+(?:<@!?(\d+)>|(\d{5,}))`)
	removePattern = regexp.MustCompile(`(?i)\bremove\s+moderator\s+(?:<@!?(\d+)>|(\d{5,}))`)
)

// Parse extracts a moderator directive from proposal text. Nil means the
// text holds no recognizable directive.
func Parse(text string) *Directive {
	if m := addPattern.FindStringSubmatch(text); m != nil {
		return &Directive{Add: true, MemberID: firstGroup(m)}
	}
	if m := removePattern.FindStringSubmatch(text); m != nil {
		return &Directive{Add: false, MemberID: firstGroup(m)}
	}
	return nil
}

func firstGroup(m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}
