package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maxagent/rag/models"
)

// Session holds one user's mutable state: the conversation transcript, the
// dedup ledger of ingested content hashes, and the list of ingested files.
// It lives for the process lifetime and is never shared across sessions.
type Session struct {
	mu        sync.Mutex
	messages  []models.Message
	processed map[string]struct{}
	ingested  []models.IngestedDocument
}

func newSession() *Session {
	return &Session{processed: make(map[string]struct{})}
}

// ShouldIngest reports whether a file with this content hash has not been
// ingested yet in this session.
func (s *Session) ShouldIngest(contentHash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.processed[contentHash]
	return !seen
}

// MarkIngested records a successfully ingested file. Callers must only invoke
// this after the index write succeeded, so that a failed file can be retried.
func (s *Session) MarkIngested(contentHash string, doc models.IngestedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[contentHash] = struct{}{}
	s.ingested = append(s.ingested, doc)
}

// IngestedDocuments returns a copy of the files ingested in this session.
func (s *Session) IngestedDocuments() []models.IngestedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.IngestedDocument, len(s.ingested))
	copy(out, s.ingested)
	return out
}

// AppendMessage adds one turn to the transcript.
func (s *Session) AppendMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// Messages returns a copy of the full transcript.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// RecentMessages returns a copy of the last n turns.
func (s *Session) RecentMessages(n int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := len(s.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Message, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out
}

// ClearMessages discards the transcript. The dedup ledger is untouched.
func (s *Session) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// ClearIngestion empties the dedup ledger and the ingested-file list. Called
// when the index is reset, so the same files can be ingested again.
func (s *Session) ClearIngestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = make(map[string]struct{})
	s.ingested = nil
}

// SessionStore hands out sessions by ID, creating them on first use.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it if needed. An empty id gets a
// freshly generated one; the returned id is always valid for later calls.
func (st *SessionStore) Get(id string) (*Session, string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if id == "" {
		id = uuid.New().String()
	}
	session, ok := st.sessions[id]
	if !ok {
		session = newSession()
		st.sessions[id] = session
	}
	return session, id
}

// ResetIngestion clears the dedup ledgers of every session. Invoked alongside
// an index reset: with the entries gone, re-ingestion must be allowed.
func (st *SessionStore) ResetIngestion() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, session := range st.sessions {
		session.ClearIngestion()
	}
}
