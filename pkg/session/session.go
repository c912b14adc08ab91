// Package session holds one user's live conversation: the ordered
// message transcript, the active thread or folder, optimistic local
// echoes and the reply-chain composition applied before a question is
// sent. It is the layer the CLI talks to; the client package stays
// stateless underneath it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"askdb/pkg/client"
	"askdb/pkg/logger"
	"askdb/pkg/models"
	"askdb/pkg/normalize"
	"askdb/pkg/state"
)

// ErrSendInFlight is returned when a send is attempted while the
// previous one has not settled. The new input is dropped, not queued.
var ErrSendInFlight = errors.New("askdb: a send is already in flight")

// ErrStaleSend is returned when a send settles after the user has
// navigated to a different view; the reply is discarded, not appended.
var ErrStaleSend = errors.New("askdb: reply discarded, conversation changed during send")

// errorReplyText is the synthetic bot reply shown when the backend
// call fails. The transcript keeps its user/bot rhythm either way.
const errorReplyText = "Something went wrong while answering. Please try again."

// Session is safe for concurrent use. Loads are tagged with an epoch;
// a load that finishes after the user has navigated elsewhere is
// discarded instead of clobbering the newer view.
type Session struct {
	client *client.Client
	userID string

	mu        sync.Mutex
	threadID  string
	aiTable   string
	msgs      []models.ChatMessage
	inFlight  bool
	bannerErr string

	epoch atomic.Uint64
}

// New returns a session bound to the client's user. The last active
// thread, if any is recorded, is restored from local state together
// with its transcript snapshot.
func New(c *client.Client) *Session {
	s := &Session{client: c, userID: c.UserID()}
	last, err := state.LastThread(s.userID)
	if err != nil || last == "" {
		return s
	}
	s.threadID = last
	if msgs, err := state.Transcript(last); err == nil {
		s.msgs = msgs
	}
	return s
}

// ThreadID returns the active thread id, or "" before the first
// exchange of a fresh conversation.
func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// Messages returns a copy of the current transcript.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// BannerError returns the sticky error text from the last failed send,
// or "".
func (s *Session) BannerError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bannerErr
}

// ClearBanner dismisses the error banner.
func (s *Session) ClearBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bannerErr = ""
}

// Send submits one question. The user message is appended to the
// transcript immediately; the bot reply (or a synthetic error reply)
// follows when the call settles. replyTo references an earlier message
// id to chain context onto the outgoing question; the chained prefix
// is sent to the backend but never shown in the transcript.
func (s *Session) Send(ctx context.Context, text, replyTo string, qt models.QueryType) (*models.ChatMessage, error) {
	return s.send(ctx, text, replyTo, qt, "")
}

// SendAudio submits a question with an attached audio file.
func (s *Session) SendAudio(ctx context.Context, text, audioPath string, qt models.QueryType) (*models.ChatMessage, error) {
	return s.send(ctx, text, "", qt, audioPath)
}

func (s *Session) send(ctx context.Context, text, replyTo string, qt models.QueryType, audioPath string) (*models.ChatMessage, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSendInFlight
	}
	s.inFlight = true
	s.bannerErr = ""
	epoch := s.epoch.Load()
	threadID := s.threadID
	aiTable := s.aiTable

	question := text
	if replyTo != "" {
		if orig, ok := normalize.OriginalQuestion(s.msgs, replyTo); ok {
			question = normalize.ComposeQuestion(orig, text)
		}
	}

	userMsg := models.ChatMessage{
		ID:      "local-" + uuid.NewString(),
		Sender:  models.SenderUser,
		Text:    text,
		Type:    models.TypeText,
		ReplyTo: replyTo,
	}
	s.msgs = append(s.msgs, userMsg)
	s.mu.Unlock()

	req := models.AskRequest{
		Question:  question,
		ThreadID:  threadID,
		QueryType: qt,
		AITable:   aiTable,
	}
	var ex *models.Exchange
	var err error
	if audioPath == "" {
		ex, err = s.client.Ask(ctx, req)
	} else {
		ex, err = s.client.AskAudio(ctx, req, audioPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.epoch.Load() != epoch {
		// user navigated away mid-send; the reply belongs to a view
		// that no longer exists
		if err != nil {
			return nil, err
		}
		return nil, ErrStaleSend
	}
	if err != nil {
		logger.Error("send_failed", "thread", threadID, "error", err)
		s.bannerErr = err.Error()
		botMsg := models.ChatMessage{
			ID:     "local-" + uuid.NewString(),
			Sender: models.SenderBot,
			Text:   errorReplyText,
			Type:   models.TypeText,
		}
		s.msgs = append(s.msgs, botMsg)
		return nil, err
	}

	botMsg := normalize.MessageFromExchange(*ex)
	s.msgs = append(s.msgs, botMsg)
	if ex.ThreadID != "" {
		s.threadID = ex.ThreadID
	}
	s.persistLocked()
	return &botMsg, nil
}

// SwitchThread loads a thread into the session, replacing the current
// transcript. Bookmarks are cross-referenced so bookmarked exchanges
// carry their flags.
func (s *Session) SwitchThread(ctx context.Context, threadID string) error {
	epoch := s.epoch.Add(1)

	var doc *models.ThreadDoc
	var bms []models.Bookmark
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = s.client.Thread(gctx, threadID)
		return err
	})
	g.Go(func() error {
		var err error
		bms, err = s.client.Bookmarks(gctx)
		if err != nil {
			// flags are decoration; the thread still renders without them
			logger.Warn("bookmark_lookup_failed", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("askdb: switch thread: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch.Load() != epoch {
		return nil
	}
	s.threadID = threadID
	s.aiTable = ""
	s.msgs = normalize.MessagesFromThread(*doc, bms)
	s.persistLocked()
	return nil
}

// OpenTable loads a folder of queries as the current transcript.
// Folder views are read-mostly; sends issued while one is open carry
// the folder id so the backend files the new exchange there.
func (s *Session) OpenTable(ctx context.Context, tableID string) error {
	epoch := s.epoch.Add(1)

	doc, err := s.client.AITable(ctx, tableID)
	if err != nil {
		return fmt.Errorf("askdb: open table: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch.Load() != epoch {
		return nil
	}
	s.threadID = ""
	s.aiTable = tableID
	s.msgs = normalize.MessagesFromTable(*doc)
	return nil
}

// OpenBookmark loads every query a bookmark references, in the
// bookmark's order, as the current transcript. Queries are fetched
// concurrently; ordering is restored by slot, not arrival.
func (s *Session) OpenBookmark(ctx context.Context, bm models.Bookmark) error {
	epoch := s.epoch.Add(1)

	docs := make([]*models.QueryDoc, len(bm.Queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, qid := range bm.Queries {
		i, qid := i, qid
		g.Go(func() error {
			doc, err := s.client.Query(gctx, qid)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("askdb: open bookmark %s: %w", bm.ID, err)
	}

	var msgs []models.ChatMessage
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		msgs = append(msgs, normalize.MessagesFromQuery(*doc, &bm)...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch.Load() != epoch {
		return nil
	}
	s.threadID = ""
	s.aiTable = ""
	s.msgs = msgs
	return nil
}

// Reset starts a fresh conversation. The next send creates a new
// thread server-side.
func (s *Session) Reset() {
	s.epoch.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threadID = ""
	s.aiTable = ""
	s.msgs = nil
	s.bannerErr = ""
}

// persistLocked records the active thread and transcript snapshot.
// Callers hold s.mu. State writes are best effort.
func (s *Session) persistLocked() {
	if s.threadID == "" {
		return
	}
	if err := state.SetLastThread(s.userID, s.threadID); err != nil {
		logger.Warn("state_write_failed", "key", "last_thread", "error", err)
	}
	if err := state.TouchRecent(s.userID, s.threadID); err != nil {
		logger.Warn("state_write_failed", "key", "recent", "error", err)
	}
	if err := state.SaveTranscript(s.threadID, s.msgs); err != nil {
		logger.Warn("state_write_failed", "key", "transcript", "error", err)
	}
}
