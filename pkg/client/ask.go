package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"askdb/pkg/cache"
	"askdb/pkg/models"
	"askdb/pkg/normalize"
	"askdb/pkg/telemetry"
)

type askResponse struct {
	QueryID  string `json:"query_id"`
	ThreadID string `json:"thread_id"`
	Answer   any    `json:"answer"`
}

// Ask sends one question and returns the decoded exchange. Identical
// concurrent asks share a single round-trip; the result stays shared
// for the ask TTL window.
func (c *Client) Ask(ctx context.Context, req models.AskRequest) (*models.Exchange, error) {
	if req.UserID == "" {
		req.UserID = c.userID
	}
	if !c.limiter.Allow() {
		return nil, ErrBusy
	}
	key := cache.Key("ask", req)
	v, err := c.cache.Do(ctx, key, askTTL, func() (any, error) {
		return c.doAsk(ctx, req, "")
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Exchange), nil
}

// AskAudio sends the same fields as multipart form values plus the
// audio file as an "audio" part.
func (c *Client) AskAudio(ctx context.Context, req models.AskRequest, audioPath string) (*models.Exchange, error) {
	if req.UserID == "" {
		req.UserID = c.userID
	}
	if !c.limiter.Allow() {
		return nil, ErrBusy
	}
	key := cache.Key("ask_audio", struct {
		Req   models.AskRequest `json:"req"`
		Audio string            `json:"audio"`
	}{req, audioPath})
	v, err := c.cache.Do(ctx, key, askTTL, func() (any, error) {
		return c.doAsk(ctx, req, audioPath)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Exchange), nil
}

func (c *Client) doAsk(ctx context.Context, req models.AskRequest, audioPath string) (*models.Exchange, error) {
	start := time.Now()
	var hreq *http.Request
	if audioPath == "" {
		b, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("askdb: ask: encode body: %w", err)
		}
		hreq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/ask", bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("askdb: ask: %w", err)
		}
		hreq.Header.Set("Content-Type", "application/json")
	} else {
		body, ctype, err := multipartAskBody(req, audioPath)
		if err != nil {
			return nil, err
		}
		hreq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/ask", body)
		if err != nil {
			return nil, fmt.Errorf("askdb: ask: %w", err)
		}
		hreq.Header.Set("Content-Type", ctype)
	}
	resp, err := c.http.Do(hreq)
	if err != nil {
		telemetry.ObserveRequest("ask", time.Since(start), err)
		return nil, fmt.Errorf("askdb: ask: %w", err)
	}
	defer resp.Body.Close()
	ex, err := c.decodeAsk(resp)
	telemetry.ObserveRequest("ask", time.Since(start), err)
	return ex, err
}

// decodeAsk branches on the transport content type: JSON answers are
// classified into the tagged union, binary office/pdf/audio bodies are
// spooled to a local file.
func (c *Client) decodeAsk(resp *http.Response) (*models.Exchange, error) {
	if resp.StatusCode/100 != 2 {
		return nil, &APIError{Endpoint: "POST /ask", Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	ct := resp.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var ar askResponse
		if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
			return nil, fmt.Errorf("askdb: decode ask response: %w", err)
		}
		return &models.Exchange{
			QueryID:  ar.QueryID,
			ThreadID: ar.ThreadID,
			Answer:   normalize.AnswerFromJSON(ar.Answer),
		}, nil
	}
	if kind, ok := blobKind(ct); ok {
		path, err := c.spool(resp.Body, kind)
		if err != nil {
			return nil, err
		}
		return &models.Exchange{
			QueryID:  resp.Header.Get("X-Query-Id"),
			ThreadID: resp.Header.Get("X-Thread-Id"),
			Answer: models.Answer{
				Kind: models.AnswerFile,
				File: models.FileRef{Path: path, Kind: kind},
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, ct)
}

// blobKind maps a binary content type to the message type it renders
// as.
func blobKind(ct string) (models.MessageType, bool) {
	switch {
	case strings.HasPrefix(ct, "audio/"):
		return models.TypeAudio, true
	case strings.HasPrefix(ct, "application/pdf"):
		return models.TypePDF, true
	case strings.HasPrefix(ct, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return models.TypeXLSX, true
	case strings.HasPrefix(ct, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return models.TypeDOCX, true
	default:
		return "", false
	}
}

var blobExt = map[models.MessageType]string{
	models.TypePDF:   ".pdf",
	models.TypeXLSX:  ".xlsx",
	models.TypeDOCX:  ".docx",
	models.TypeAudio: ".audio",
}

// spool writes a binary answer body to a local file; the returned path
// plays the role the browser front-end gives a blob object URL.
func (c *Client) spool(r io.Reader, kind models.MessageType) (string, error) {
	f, err := os.CreateTemp(c.blobDir, "askdb-*"+blobExt[kind])
	if err != nil {
		return "", fmt.Errorf("askdb: spool answer: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("askdb: spool answer: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("askdb: spool answer: %w", err)
	}
	return f.Name(), nil
}

func multipartAskBody(req models.AskRequest, audioPath string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, val string }{
		{"user_id", req.UserID},
		{"question", req.Question},
		{"dashboard", req.Dashboard},
		{"tile", req.Tile},
		{"thread_id", req.ThreadID},
		{"bookmarkname", req.BookmarkName},
		{"bookmark_id", req.BookmarkID},
		{"query_type", string(req.QueryType)},
		{"ai_table", req.AITable},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.val); err != nil {
			return nil, "", fmt.Errorf("askdb: build audio form: %w", err)
		}
	}
	part, err := w.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("askdb: build audio form: %w", err)
	}
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("askdb: open audio file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("askdb: read audio file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("askdb: build audio form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
