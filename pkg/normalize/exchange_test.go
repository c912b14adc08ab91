package normalize

import (
	"testing"

	"askdb/pkg/models"
)

func TestIsTabular(t *testing.T) {
	if !IsTabular([]any{[]any{"a", "b"}, []any{1.0, 2.0}}) {
		t.Fatal("2D array with string header must be tabular")
	}
	if !IsTabular([]any{map[string]any{"a": 1.0}}) {
		t.Fatal("array of objects must be tabular")
	}
	if IsTabular([]any{[]any{1.0, "b"}}) {
		t.Fatal("non-string header row must not be tabular")
	}
	if IsTabular([]any{}) || IsTabular("text") || IsTabular(nil) {
		t.Fatal("scalars and empty arrays must not be tabular")
	}
}

func TestAnswerFromJSON(t *testing.T) {
	if a := AnswerFromJSON(nil); a.Kind != models.AnswerText || a.Text != NoResponseText {
		t.Fatalf("nil answer: %+v", a)
	}
	if a := AnswerFromJSON("  "); a.Text != NoResponseText {
		t.Fatalf("blank answer: %+v", a)
	}
	if a := AnswerFromJSON("forty two"); a.Kind != models.AnswerText || a.Text != "forty two" {
		t.Fatalf("string answer: %+v", a)
	}

	table := []any{[]any{"vendor"}, []any{"acme"}}
	a := AnswerFromJSON(table)
	if a.Kind != models.AnswerTable {
		t.Fatalf("tabular answer: %+v", a)
	}
	// tabular payloads pass through untouched, no header conversion
	rows, ok := a.Table.([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("table mutated: %#v", a.Table)
	}

	if a := AnswerFromJSON(42.0); a.Kind != models.AnswerText || a.Text != "42" {
		t.Fatalf("scalar answer: %+v", a)
	}
}

func TestMessageFromExchange(t *testing.T) {
	ex := models.Exchange{
		QueryID:  "q7",
		ThreadID: "t1",
		Answer:   models.Answer{Kind: models.AnswerText, Text: "hello"},
	}
	m := MessageFromExchange(ex)
	if m.ID != "q7-0" || m.Sender != models.SenderBot || m.Text != "hello" || m.Type != models.TypeText {
		t.Fatalf("text exchange: %+v", m)
	}

	ex.Answer = models.Answer{Kind: models.AnswerFile, File: models.FileRef{Path: "/tmp/x.pdf", Kind: models.TypePDF}}
	m = MessageFromExchange(ex)
	if m.Type != models.TypePDF {
		t.Fatalf("file exchange type: %+v", m)
	}
	ref, ok := m.RawAnswer.(models.FileRef)
	if !ok || ref.Path != "/tmp/x.pdf" {
		t.Fatalf("file ref: %#v", m.RawAnswer)
	}
}
