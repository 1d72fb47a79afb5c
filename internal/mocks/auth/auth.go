// Package auth contains simple hand-written test doubles for auth and
// delivery ports. These are lightweight and suitable for unit tests without
// codegen.
package auth

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	domainauth "github.com/GustavoMarcolla/insightscore-pro/internal/domain/auth"
	apperrors "github.com/GustavoMarcolla/insightscore-pro/internal/errors"
	"github.com/GustavoMarcolla/insightscore-pro/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider          = (*MockAuthProvider)(nil)
	_ ports.PasswordAuthenticator = (*MockPasswordAuthenticator)(nil)
	_ ports.SessionStore          = (*MemorySessionStore)(nil)
	_ ports.TokenIssuer           = (*MockTokenIssuer)(nil)
	_ ports.Mailer                = (*MockMailer)(nil)
	_ ports.BlobStore             = (*MockBlobStore)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce
// handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FullName:  "Mock User",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	return m.AuthURL, fmt.Sprintf("state-%d", m.callCount), fmt.Sprintf("nonce-%d", m.callCount), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	if in.Code == "" || in.State == "" {
		return domainauth.Identity{}, apperrors.Unauthorized("invalid code or state")
	}
	return m.DefaultUser, nil
}

// MockPasswordAuthenticator verifies against a fixed credential table.
type MockPasswordAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (domainauth.Identity, error)
}

func (m *MockPasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return domainauth.Identity{}, apperrors.Unauthorized("invalid email or password")
}

// MemorySessionStore is an in-memory ports.SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MockTokenIssuer mints predictable token pairs keyed by session ID.
type MockTokenIssuer struct {
	IssueFunc func(ctx context.Context, sess domainauth.Session) (domainauth.TokenPair, error)

	mu     sync.Mutex
	issued map[string]domainauth.Session
}

func (m *MockTokenIssuer) Issue(ctx context.Context, sess domainauth.Session) (domainauth.TokenPair, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, sess)
	}
	m.mu.Lock()
	if m.issued == nil {
		m.issued = make(map[string]domainauth.Session)
	}
	access := "access-" + sess.ID
	m.issued[access] = sess
	m.mu.Unlock()
	return domainauth.TokenPair{
		AccessToken:  access,
		RefreshToken: "refresh-" + sess.ID,
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (m *MockTokenIssuer) Verify(_ context.Context, accessToken string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.issued[accessToken]
	if !ok {
		return domainauth.Session{}, apperrors.Unauthorized("invalid token")
	}
	return sess, nil
}

func (m *MockTokenIssuer) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	m.mu.Lock()
	var found *domainauth.Session
	for _, sess := range m.issued {
		if "refresh-"+sess.ID == refreshToken {
			found = &sess
			break
		}
	}
	m.mu.Unlock()
	if found == nil {
		return domainauth.TokenPair{}, apperrors.Unauthorized("invalid token")
	}
	return m.Issue(ctx, *found)
}

// MockMailer records sent messages.
type MockMailer struct {
	SendFunc func(ctx context.Context, msg ports.Message) error

	mu   sync.Mutex
	sent []ports.Message
}

func (m *MockMailer) Send(ctx context.Context, msg ports.Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *MockMailer) Sent() []ports.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Message(nil), m.sent...)
}

// MockBlobStore keeps objects in memory.
type MockBlobStore struct {
	PutFunc func(ctx context.Context, in ports.PutObjectInput) error

	mu      sync.Mutex
	objects map[string][]byte
}

func (m *MockBlobStore) Put(ctx context.Context, in ports.PutObjectInput) error {
	if m.PutFunc != nil {
		if err := m.PutFunc(ctx, in); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[in.Key] = data
	m.mu.Unlock()
	return nil
}

func (m *MockBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	data, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.NotFound("object not found")
	}
	return io.NopCloser(newBytesReader(data)), nil
}

func (m *MockBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MockBlobStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	_, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return "", apperrors.NotFound("object not found")
	}
	return "https://blobs.test/" + key, nil
}

// Has reports whether an object is stored under key.
func (m *MockBlobStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func newBytesReader(b []byte) io.Reader {
	r := bytesReader{data: b}
	return &r
}

type bytesReader struct {
	data []byte
	off  int
}

func (r *bytesReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}
