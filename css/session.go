package css

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Loader opens stylesheets referenced by url. Returned reader produces UTF-8
// text.
type Loader interface {
	Load(ctx context.Context, url string) (io.ReadCloser, error)
}

// LoaderFunc adapts function to Loader.
type LoaderFunc func(ctx context.Context, url string) (io.ReadCloser, error)

func (f LoaderFunc) Load(ctx context.Context, url string) (io.ReadCloser, error) { return f(ctx, url) }

// Session ties together a chain of nested parses started by a single
// top-level call. It keeps stylesheets being parsed so circular @import is
// detected. Session is safe for concurrent use, although a single chain of
// imports is always parsed sequentially.
type Session struct {
	ID uuid.UUID

	mu    sync.Mutex
	stack []string
}

func NewSession() *Session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Session{ID: id}
}

// enter pushes source, returns false when source is already being parsed.
func (s *Session) enter(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if source != "" && slices.Contains(s.stack, source) {
		return false
	}
	s.stack = append(s.stack, source)
	return true
}

func (s *Session) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Active reports whether source is being parsed in this session.
func (s *Session) Active(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.stack, source)
}

// Depth returns number of nested parses in progress.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

func (s *Session) top() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1]
}

type sessionKey struct{}

// WithSession returns context carrying session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns session stored in context or nil.
func SessionFrom(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// session returns context session creating new one when there is none.
func session(ctx context.Context) (context.Context, *Session) {
	if s := SessionFrom(ctx); s != nil {
		return ctx, s
	}
	s := NewSession()
	return WithSession(ctx, s), s
}
