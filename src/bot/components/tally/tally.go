package tally

// Count subtracts the bot's own seed reaction from a raw per-option count.
// The bot reacts with both options when a vote opens so members can click
// them; its own reaction is not a vote.
func Count(raw int, botSeeded bool) int {
	if botSeeded {
		raw--
	}
	if raw < 0 {
		return 0
	}
	return raw
}

// Decide applies the pass rule. A tie fails.
func Decide(yes, no int) bool {
	return yes > no
}
