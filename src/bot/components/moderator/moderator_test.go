package moderator

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		text string
		want *Directive
	}{
		{"add with mention", "Moderator: add moderator <@12345>", &Directive{Add: true, MemberID: "12345"}},
		{"add with nickname mention", "add moderator <@!67890>", &Directive{Add: true, MemberID: "67890"}},
		{"add with raw id", "please add moderator 111222333", &Directive{Add: true, MemberID: "111222333"}},
		{"remove with mention", "Moderator: remove moderator <@12345>", &Directive{Add: false, MemberID: "12345"}},
		{"case-insensitive", "ADD MODERATOR <@42424242>", &Directive{Add: true, MemberID: "42424242"}},
		{"no directive", "Moderator: let's talk about moderation", nil},
		{"missing member reference", "add moderator please", nil},
		{"short number is not a member id", "add moderator 42", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Parse(c.text)
			if c.want == nil {
				if got != nil {
					t.Fatalf("Parse(%q) = %+v, want nil", c.text, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want %+v", c.text, c.want)
			}
			if got.Add != c.want.Add || got.MemberID != c.want.MemberID {
				t.Errorf("Parse(%q) = %+v, want %+v", c.text, got, c.want)
			}
		})
	}
}
