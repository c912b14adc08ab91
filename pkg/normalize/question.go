// Package normalize reshapes heterogeneous backend payloads into the
// uniform chat-message model and builds outgoing question strings from
// reply-chain context. Everything here is a pure transformation.
package normalize

import (
	"fmt"
	"strings"

	"askdb/pkg/models"
)

// Reply chains come from upstream data and are not trusted to be
// acyclic; the walk keeps a visited set and a hard depth cap so bad
// data degrades instead of hanging.
const maxChainDepth = 64

const newQuestionMarker = "New Question: "

// greetings is the closed set of low-content acknowledgements that are
// skipped when resolving the true original question of a chain.
var greetings = map[string]struct{}{
	"ok":        {},
	"okay":      {},
	"thanks":    {},
	"thank you": {},
	"yes":       {},
	"no":        {},
	"hmm":       {},
	"sure":      {},
	"cool":      {},
	"great":     {},
	"nice":      {},
	"hi":        {},
	"hello":     {},
}

// IsGreeting reports whether s is a content-free acknowledgement.
// Matching is case-insensitive and ignores surrounding whitespace and
// trailing punctuation.
func IsGreeting(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "!?. ")
	_, ok := greetings[s]
	return ok
}

// OriginalQuestion walks the reply chain backward from the message with
// id replyTo and returns the root-most non-greeting text. Composed
// texts are display-stripped before consideration. ok is false when the
// chain holds no substantive text at all; callers then fall back to the
// raw new message rather than inheriting a greeting.
func OriginalQuestion(msgs []models.ChatMessage, replyTo string) (string, bool) {
	byID := make(map[string]models.ChatMessage, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
	}
	var orig string
	visited := make(map[string]struct{})
	cur := replyTo
	for depth := 0; depth < maxChainDepth && cur != ""; depth++ {
		if _, seen := visited[cur]; seen {
			break
		}
		visited[cur] = struct{}{}
		m, ok := byID[cur]
		if !ok {
			break
		}
		if t := strings.TrimSpace(DisplayText(m.Text)); t != "" && !IsGreeting(t) {
			orig = t
		}
		cur = m.ReplyTo
	}
	return orig, orig != ""
}

// ComposeQuestion builds the outgoing question text for a reply.
func ComposeQuestion(original, newMsg string) string {
	return fmt.Sprintf("Original Questions: %s | %s%s", original, newQuestionMarker, newMsg)
}

// DisplayText strips the composed reply format back down for
// presentation: a message of the form "... | New Question: X" displays
// only X. The marker counts only at a composed-format boundary (string
// start or after the "| " separator); a message that merely mentions
// the marker mid-text displays unchanged.
func DisplayText(s string) string {
	for idx := strings.LastIndex(s, newQuestionMarker); idx >= 0; idx = strings.LastIndex(s[:idx], newQuestionMarker) {
		if idx == 0 || strings.HasSuffix(s[:idx], "| ") {
			return strings.TrimSpace(s[idx+len(newQuestionMarker):])
		}
	}
	return s
}
