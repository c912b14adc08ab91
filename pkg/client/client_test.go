package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"askdb/pkg/cache"
	"askdb/pkg/models"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{
		BaseURL:   srv.URL,
		UserID:    "u1",
		RateRPS:   1000,
		RateBurst: 1000,
		Cache:     cache.New(cache.NewManualClock(time.Unix(0, 0))),
		BlobDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return c, srv
}

func TestAskJSONAnswer(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req models.AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.UserID != "u1" {
			t.Errorf("user id not filled: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"query_id":  "q1",
			"thread_id": "t1",
			"answer":    "forty two",
		})
	}))

	ex, err := c.Ask(context.Background(), models.AskRequest{Question: "what", QueryType: models.QueryChat})
	if err != nil {
		t.Fatal(err)
	}
	if ex.QueryID != "q1" || ex.ThreadID != "t1" {
		t.Fatalf("ids: %+v", ex)
	}
	if ex.Answer.Kind != models.AnswerText || ex.Answer.Text != "forty two" {
		t.Fatalf("answer: %+v", ex.Answer)
	}
}

func TestAskTabularAnswerPassthrough(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query_id":"q1","thread_id":"t1","answer":[["vendor"],["acme"]]}`))
	}))

	ex, err := c.Ask(context.Background(), models.AskRequest{Question: "top vendors"})
	if err != nil {
		t.Fatal(err)
	}
	if ex.Answer.Kind != models.AnswerTable {
		t.Fatalf("kind: %+v", ex.Answer)
	}
	rows, ok := ex.Answer.Table.([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("table: %#v", ex.Answer.Table)
	}
}

func TestAskSpoolsBinaryAnswer(t *testing.T) {
	payload := []byte("%PDF-1.4 fake")
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("X-Query-Id", "q1")
		w.Header().Set("X-Thread-Id", "t1")
		w.Write(payload)
	}))

	ex, err := c.Ask(context.Background(), models.AskRequest{Question: "export as pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if ex.Answer.Kind != models.AnswerFile || ex.Answer.File.Kind != models.TypePDF {
		t.Fatalf("answer: %+v", ex.Answer)
	}
	b, err := os.ReadFile(ex.Answer.File.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != string(payload) {
		t.Fatalf("spooled body mismatch: %q", b)
	}
	if ex.QueryID != "q1" || ex.ThreadID != "t1" {
		t.Fatalf("ids from headers: %+v", ex)
	}
}

func TestAskAudioSendsMultipartForm(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "question.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF fake wave"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			return
		}
		want := map[string]string{
			"user_id":      "u1",
			"question":     "what did I say",
			"dashboard":    "",
			"tile":         "",
			"thread_id":    "t1",
			"bookmarkname": "",
			"bookmark_id":  "",
			"query_type":   "CHAT",
			"ai_table":     "",
		}
		for field, val := range want {
			got, ok := r.MultipartForm.Value[field]
			if !ok {
				t.Errorf("form field %q missing", field)
				continue
			}
			if got[0] != val {
				t.Errorf("form field %q = %q, want %q", field, got[0], val)
			}
		}
		fhs, ok := r.MultipartForm.File["audio"]
		if !ok || len(fhs) != 1 {
			t.Error("audio part missing")
		} else {
			if fhs[0].Filename != "question.wav" {
				t.Errorf("audio filename = %q", fhs[0].Filename)
			}
			f, err := fhs[0].Open()
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			b, _ := io.ReadAll(f)
			if string(b) != "RIFF fake wave" {
				t.Errorf("audio body = %q", b)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query_id":"q1","thread_id":"t1","answer":"you asked about vendors"}`))
	}))

	ex, err := c.AskAudio(context.Background(), models.AskRequest{
		Question:  "what did I say",
		ThreadID:  "t1",
		QueryType: models.QueryChat,
	}, audioPath)
	if err != nil {
		t.Fatal(err)
	}
	if ex.QueryID != "q1" || ex.Answer.Kind != models.AnswerText || ex.Answer.Text != "you asked about vendors" {
		t.Fatalf("exchange: %+v", ex)
	}
}

func TestAskUnsupportedContentType(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>"))
	}))

	_, err := c.Ask(context.Background(), models.AskRequest{Question: "q"})
	if !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("got %v, want ErrUnsupportedContentType", err)
	}
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "thread not found", http.StatusNotFound)
	}))

	_, err := c.Thread(context.Background(), "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Body != "thread not found" {
		t.Fatalf("%+v", apiErr)
	}
}

func TestAskRateLimiterDropsBurst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query_id":"q1","thread_id":"t1","answer":"x"}`))
	}))
	defer srv.Close()
	c, err := New(Options{
		BaseURL: srv.URL, UserID: "u1",
		RateRPS: 0.001, RateBurst: 1,
		Cache: cache.New(cache.NewManualClock(time.Unix(0, 0))),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Ask(context.Background(), models.AskRequest{Question: "a"}); err != nil {
		t.Fatal(err)
	}
	_, err = c.Ask(context.Background(), models.AskRequest{Question: "b"})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("got %v, want ErrBusy", err)
	}
}

func TestConcurrentIdenticalAsksHitServerOnce(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query_id":"q1","thread_id":"t1","answer":"x"}`))
	}))

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Ask(context.Background(), models.AskRequest{Question: "same"})
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("server saw %d requests, want 1", got)
	}
}

func TestRenameThreadInvalidatesCaches(t *testing.T) {
	var threadHits atomic.Int64
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/threads/t1":
			threadHits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"thread_id":"t1","name":"old","queries":[]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/threads/t1/rename":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	ctx := context.Background()
	if _, err := c.Thread(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Thread(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if threadHits.Load() != 1 {
		t.Fatalf("thread fetch not cached: %d hits", threadHits.Load())
	}

	if err := c.RenameThread(ctx, "t1", "new"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Thread(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if threadHits.Load() != 2 {
		t.Fatalf("rename did not invalidate the thread cache: %d hits", threadHits.Load())
	}
}
