// Package document manages uploaded-document sessions: a PDF comes in, its
// text is extracted and held in the session store until the TTL lapses, and
// questions about it are answered by the external assistant model.
package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hcpro/triaged/internal/session"
)

var (
	// ErrEmptyFile is returned when the uploaded file has no content.
	ErrEmptyFile = errors.New("uploaded file is empty")

	// ErrNotPDF is returned when the upload is not a PDF document.
	ErrNotPDF = errors.New("uploaded file is not a PDF")
)

// Context is the session payload for one uploaded document.
type Context struct {
	Filename string
	Text     string
}

// Info is the read-only session summary served by GET /session/{id}.
type Info struct {
	Filename   string
	TextLength int
	UploadTime time.Time
}

// TextExtractor extracts plain text from uploaded file bytes.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Answerer answers a question grounded on extracted document text.
type Answerer interface {
	Answer(ctx context.Context, question, docText string) (string, error)
}

// Manager owns document sessions. Like the intake machine it shares the
// session store and never retains a session reference between calls.
type Manager struct {
	sessions  *session.Store
	extractor TextExtractor
	answerer  Answerer
}

// NewManager creates a Manager over the given store and collaborators.
func NewManager(sessions *session.Store, extractor TextExtractor, answerer Answerer) *Manager {
	return &Manager{sessions: sessions, extractor: extractor, answerer: answerer}
}

// Upload validates the file, extracts its text and creates a document
// session. It returns the new session id and the extracted text length.
func (m *Manager) Upload(filename string, data []byte) (string, int, error) {
	if len(data) == 0 {
		return "", 0, ErrEmptyFile
	}
	if !isPDF(filename, data) {
		return "", 0, ErrNotPDF
	}

	text, err := m.extractor.Extract(data)
	if err != nil {
		return "", 0, fmt.Errorf("extracting text from %s: %w", filename, err)
	}

	id := m.sessions.Create(Context{Filename: filename, Text: text})
	return id, len(text), nil
}

// Ask answers a question about the document held in the session and extends
// the session's TTL window. Unknown, expired, or non-document ids are
// session.ErrNotFound.
func (m *Manager) Ask(ctx context.Context, id, query string) (answer, filename string, err error) {
	sess, err := m.sessions.Get(id)
	if err != nil {
		return "", "", err
	}
	doc, ok := sess.Payload.(Context)
	if !ok {
		return "", "", session.ErrNotFound
	}

	// The model call runs outside any store critical section.
	answer, err = m.answerer.Answer(ctx, query, doc.Text)
	if err != nil {
		return "", "", fmt.Errorf("answering question: %w", err)
	}

	if err := m.sessions.Touch(id); err != nil && !errors.Is(err, session.ErrNotFound) {
		return "", "", err
	}
	return answer, doc.Filename, nil
}

// Describe returns the session summary without refreshing its TTL window.
func (m *Manager) Describe(id string) (Info, error) {
	sess, err := m.sessions.Get(id)
	if err != nil {
		return Info{}, err
	}
	doc, ok := sess.Payload.(Context)
	if !ok {
		return Info{}, session.ErrNotFound
	}
	return Info{
		Filename:   doc.Filename,
		TextLength: len(doc.Text),
		UploadTime: sess.CreatedAt,
	}, nil
}

// isPDF accepts a file when either the extension or the magic header says
// PDF; browsers are inconsistent about both.
func isPDF(filename string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
