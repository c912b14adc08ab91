package normalize

import (
	"testing"

	"askdb/pkg/models"
)

func msg(id, text, replyTo string) models.ChatMessage {
	return models.ChatMessage{ID: id, Text: text, ReplyTo: replyTo, Sender: models.SenderUser, Type: models.TypeText}
}

func TestIsGreeting(t *testing.T) {
	for _, s := range []string{"ok", "OK", " Okay! ", "thanks", "Thank you.", "hmm??", "hi"} {
		if !IsGreeting(s) {
			t.Errorf("IsGreeting(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "show revenue", "ok show revenue", "thanks, now by region"} {
		if IsGreeting(s) {
			t.Errorf("IsGreeting(%q) = true, want false", s)
		}
	}
}

func TestOriginalQuestionSkipsGreetings(t *testing.T) {
	msgs := []models.ChatMessage{
		msg("a", "show revenue by month", ""),
		msg("b", "ok", "a"),
		msg("c", "thanks!", "b"),
	}
	orig, ok := OriginalQuestion(msgs, "c")
	if !ok || orig != "show revenue by month" {
		t.Fatalf("got %q, %v", orig, ok)
	}
}

func TestOriginalQuestionPrefersRootMost(t *testing.T) {
	msgs := []models.ChatMessage{
		msg("a", "show revenue by month", ""),
		msg("b", "only for 2025", "a"),
	}
	orig, ok := OriginalQuestion(msgs, "b")
	if !ok || orig != "show revenue by month" {
		t.Fatalf("got %q, want the root question", orig)
	}
}

func TestOriginalQuestionStripsComposedText(t *testing.T) {
	composed := ComposeQuestion("show revenue by month", "only for 2025")
	msgs := []models.ChatMessage{
		msg("a", composed, ""),
	}
	orig, ok := OriginalQuestion(msgs, "a")
	if !ok || orig != "only for 2025" {
		t.Fatalf("got %q, want the display-stripped text", orig)
	}
}

func TestOriginalQuestionAllGreetings(t *testing.T) {
	msgs := []models.ChatMessage{
		msg("a", "hi", ""),
		msg("b", "ok", "a"),
	}
	if orig, ok := OriginalQuestion(msgs, "b"); ok {
		t.Fatalf("all-greeting chain resolved to %q, want ok=false", orig)
	}
}

func TestOriginalQuestionSurvivesCycles(t *testing.T) {
	msgs := []models.ChatMessage{
		msg("a", "ok", "c"),
		msg("b", "show revenue", "a"),
		msg("c", "thanks", "b"),
	}
	// a -> c -> b -> a would loop forever without the visited set
	orig, ok := OriginalQuestion(msgs, "a")
	if !ok || orig != "show revenue" {
		t.Fatalf("got %q, %v", orig, ok)
	}
}

func TestOriginalQuestionDanglingReply(t *testing.T) {
	msgs := []models.ChatMessage{msg("a", "show revenue", "")}
	if orig, ok := OriginalQuestion(msgs, "missing"); ok {
		t.Fatalf("dangling reply resolved to %q", orig)
	}
}

func TestComposeAndDisplayRoundTrip(t *testing.T) {
	composed := ComposeQuestion("show revenue by month", "only for 2025")
	want := "Original Questions: show revenue by month | New Question: only for 2025"
	if composed != want {
		t.Fatalf("ComposeQuestion = %q, want %q", composed, want)
	}
	if got := DisplayText(composed); got != "only for 2025" {
		t.Fatalf("DisplayText = %q", got)
	}
	if got := DisplayText("plain question"); got != "plain question" {
		t.Fatalf("DisplayText mangled a plain string: %q", got)
	}
}

func TestDisplayTextIgnoresMidTextMarker(t *testing.T) {
	// a user asking about the format itself is not a composed message
	raw := `why does the bot prefix replies with New Question: sometimes`
	if got := DisplayText(raw); got != raw {
		t.Fatalf("mid-text marker stripped: %q", got)
	}

	// anchored occurrence still strips even when the new text mentions
	// the marker
	composed := ComposeQuestion("show revenue", "what does New Question: mean")
	if got := DisplayText(composed); got != "what does New Question: mean" {
		t.Fatalf("composed form: %q", got)
	}

	// marker opening the string counts as a boundary
	if got := DisplayText("New Question: only for 2025"); got != "only for 2025" {
		t.Fatalf("string-start boundary: %q", got)
	}
}
