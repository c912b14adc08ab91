package normalize

import (
	"encoding/json"
	"testing"

	"askdb/pkg/models"
)

func TestMessagesFromUnitsFiltering(t *testing.T) {
	units := []models.RawUnit{
		{Role: "user", Content: "top 5 vendors"},
		{Role: "assistant", Content: "SQL Generated by LLM: SELECT * FROM vendors"},
		{Role: "assistant", TableUsed: json.RawMessage(`{"table":"vendors"}`)},
		{Role: "assistant", Content: "   "},
		{Role: "assistant", Results: json.RawMessage(`"here are your vendors"`)},
	}
	out := MessagesFromUnits("q1", units, UnitOptions{})
	if len(out) != 2 {
		t.Fatalf("got %d messages, want 2 (trace, marker and blank filtered)", len(out))
	}
	if out[0].ID != "q1-0" || out[1].ID != "q1-1" {
		t.Fatalf("ids not indexed over surviving messages: %s, %s", out[0].ID, out[1].ID)
	}
	if out[0].Sender != models.SenderUser || out[1].Sender != models.SenderBot {
		t.Fatalf("sender mapping wrong: %s, %s", out[0].Sender, out[1].Sender)
	}
	if out[1].Text != "here are your vendors" || out[1].Type != models.TypeText {
		t.Fatalf("string results mishandled: %+v", out[1])
	}
}

func TestClassifyStructuredTabular(t *testing.T) {
	u := models.RawUnit{
		Role:    "assistant",
		Results: json.RawMessage(`{"type":"tabular","data":[["vendor","total"],["acme",12]]}`),
	}
	out := MessagesFromUnits("q1", []models.RawUnit{u}, UnitOptions{})
	if len(out) != 1 || out[0].Type != models.TypeTabular {
		t.Fatalf("got %+v", out)
	}
	rows, ok := out[0].RawAnswer.([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("raw rows: %#v", out[0].RawAnswer)
	}
}

func TestClassifyDoubleNestedData(t *testing.T) {
	u := models.RawUnit{
		Role:    "assistant",
		Results: json.RawMessage(`{"type":"tabular","data":{"data":[["a"],["1"]]}}`),
	}
	out := MessagesFromUnits("q1", []models.RawUnit{u}, UnitOptions{})
	if len(out) != 1 || out[0].Type != models.TypeTabular {
		t.Fatalf("double-nested data not unwrapped: %+v", out)
	}
}

func TestClassifyStructuredText(t *testing.T) {
	u := models.RawUnit{
		Role:    "assistant",
		Results: json.RawMessage(`{"type":"text","data":"all done"}`),
	}
	out := MessagesFromUnits("q1", []models.RawUnit{u}, UnitOptions{})
	if len(out) != 1 || out[0].Text != "all done" || out[0].Type != models.TypeText {
		t.Fatalf("got %+v", out)
	}
}

func TestClassifyEmptyRowsDropped(t *testing.T) {
	u := models.RawUnit{
		Role:    "assistant",
		Results: json.RawMessage(`{"type":"tabular","data":[]}`),
	}
	if out := MessagesFromUnits("q1", []models.RawUnit{u}, UnitOptions{}); len(out) != 0 {
		t.Fatalf("empty tabular payload produced %d messages", len(out))
	}
}

func TestCoerceCell(t *testing.T) {
	if got := CoerceCell(map[string]any{"value": 42.0}); got != "42" {
		t.Fatalf("wrapper object: got %v", got)
	}
	if got := CoerceCell(map[string]any{"a": 1.0, "b": 2.0}); got != `{"a":1,"b":2}` {
		t.Fatalf("multi-field object: got %v", got)
	}
	if got := CoerceCell("plain"); got != "plain" {
		t.Fatalf("string passthrough: got %v", got)
	}
	if got := CoerceCell(3.5); got != 3.5 {
		t.Fatalf("number passthrough: got %v", got)
	}
}

func TestConvertRows(t *testing.T) {
	rows := []any{
		[]any{"vendor", "total"},
		[]any{"acme", 12.0},
		[]any{"globex", map[string]any{"value": 7.0}},
	}
	out := ConvertRows(rows)
	if len(out) != 2 {
		t.Fatalf("got %d rows", len(out))
	}
	if out[0]["vendor"] != "acme" || out[0]["total"] != 12.0 {
		t.Fatalf("row 0: %#v", out[0])
	}
	if out[1]["total"] != "7" {
		t.Fatalf("wrapper cell not coerced: %#v", out[1])
	}
	if ConvertRows([]any{[]any{"a", 1.0}}) != nil {
		t.Fatal("non-string header must yield nil")
	}
	if ConvertRows(nil) != nil {
		t.Fatal("empty input must yield nil")
	}
}

func TestFlattenUnits(t *testing.T) {
	flat := json.RawMessage(`[{"role":"user","content":"q"}]`)
	if got := FlattenUnits(flat); len(got) != 1 || got[0].Content != "q" {
		t.Fatalf("flat form: %#v", got)
	}
	nested := json.RawMessage(`[[{"role":"user","content":"q1"}],[{"role":"user","content":"q2"}]]`)
	got := FlattenUnits(nested)
	if len(got) != 2 || got[1].Content != "q2" {
		t.Fatalf("nested form: %#v", got)
	}
	if FlattenUnits(nil) != nil || FlattenUnits(json.RawMessage(`null`)) != nil {
		t.Fatal("nil/null must yield nil")
	}
}

func TestMessagesFromThreadBookmarkCrossRef(t *testing.T) {
	doc := models.ThreadDoc{
		ThreadID: "t1",
		Queries: []models.QueryGroup{
			{QueryID: "q1", Messages: json.RawMessage(`[{"role":"user","content":"a"}]`)},
			{QueryID: "q2", Messages: json.RawMessage(`[{"role":"user","content":"b"}]`)},
		},
	}
	bms := []models.Bookmark{{ID: "bm1", Name: "faves", Queries: models.QueryRefs{"q2"}}}
	out := MessagesFromThread(doc, bms)
	if len(out) != 2 {
		t.Fatalf("got %d messages", len(out))
	}
	if out[0].Bookmarked {
		t.Fatal("q1 should not be bookmarked")
	}
	if !out[1].Bookmarked || out[1].BookmarkID != "bm1" {
		t.Fatalf("q2 bookmark flags: %+v", out[1])
	}
}

func TestBookmarkQueryRefsStringForm(t *testing.T) {
	var bm models.Bookmark
	if err := json.Unmarshal([]byte(`{"bookmark_id":"b1","bookmarkname":"n","query_ids":"q9"}`), &bm); err != nil {
		t.Fatal(err)
	}
	if !bm.HasQuery("q9") {
		t.Fatalf("string-form query_ids not decoded: %+v", bm)
	}
}

func TestMessagesFromQueryAlwaysBookmarked(t *testing.T) {
	doc := models.QueryDoc{QueryID: "q1", Messages: json.RawMessage(`[{"role":"user","content":"a"}]`)}
	bm := models.Bookmark{ID: "bm1"}
	out := MessagesFromQuery(doc, &bm)
	if len(out) != 1 || !out[0].Bookmarked || out[0].BookmarkID != "bm1" {
		t.Fatalf("got %+v", out)
	}
	if out := MessagesFromQuery(doc, nil); out[0].Bookmarked {
		t.Fatal("nil bookmark must not mark messages")
	}
}
