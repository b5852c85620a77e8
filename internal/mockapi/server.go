// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package mockapi is an in-memory notewire backend for local development
// and tests. It speaks the same contract the CLI consumes: bearer-token
// auth, JSON envelopes, 401 on missing or expired tokens. Nothing it
// stores survives the process.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const Version = "dev"

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the account payload the API returns.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Post is the post payload the API returns.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type account struct {
	user         User
	passwordHash []byte
}

type token struct {
	userID    string
	expiresAt time.Time
}

// Server holds the in-memory state behind the HTTP handlers.
type Server struct {
	tokenTTL time.Duration
	now      func() time.Time

	mu        sync.Mutex
	accounts  map[string]*account // keyed by lowercased email
	tokens    map[string]token
	posts     map[string]Post
	postOrder []string
	nextPost  int
}

// Option configures a Server.
type Option func(*Server)

// WithTokenTTL overrides how long issued tokens live.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// WithUser seeds an account. The password is stored hashed, like any
// other signup.
func WithUser(email, password, name string) Option {
	return func(s *Server) {
		if _, err := s.createAccount(email, password, name); err != nil {
			panic(fmt.Sprintf("mockapi: seeding user %s: %v", email, err))
		}
	}
}

// WithPost seeds a post owned by the account with the given email. The
// account must be seeded first.
func WithPost(authorEmail, title, body string) Option {
	return func(s *Server) {
		acct, ok := s.accounts[strings.ToLower(authorEmail)]
		if !ok {
			panic(fmt.Sprintf("mockapi: seeding post for unknown user %s", authorEmail))
		}
		s.addPost(acct.user.ID, title, body)
	}
}

// NewServer builds a backend with no accounts unless options seed some.
func NewServer(opts ...Option) *Server {
	s := &Server{
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
		accounts: make(map[string]*account),
		tokens:   make(map[string]token),
		posts:    make(map[string]Post),
		nextPost: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP surface. Protected routes sit behind the
// bearer-token middleware; login, signup and version are open.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/signup", s.handleSignup)
	r.Get("/version", s.handleVersion)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/logout", s.handleLogout)
		r.Get("/users/me", s.handleMe)
		r.Get("/posts", s.handleListPosts)
		r.Post("/posts", s.handleCreatePost)
		r.Get("/posts/{id}", s.handleGetPost)
		r.Delete("/posts/{id}", s.handleDeletePost)
	})

	return r
}

// Run serves the API on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// createAccount registers an account, enforcing the same rules the
// signup handler applies.
func (s *Server) createAccount(email, password, name string) (User, error) {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) || len(email) > 255 {
		return User{}, errors.New("invalid email address")
	}
	if len(password) < 8 || len(password) > 100 {
		return User{}, errors.New("password must be between 8 and 100 characters")
	}

	key := strings.ToLower(email)
	if _, exists := s.accounts[key]; exists {
		return User{}, errAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{ID: uuid.NewString(), Email: email, Name: strings.TrimSpace(name)}
	s.accounts[key] = &account{user: u, passwordHash: hash}
	return u, nil
}

var errAccountExists = errors.New("email already registered")

// authenticate checks credentials and issues a fresh token.
func (s *Server) authenticate(email, password string) (User, string, bool) {
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		// Hash anyway so a prober cannot time the difference between an
		// unknown email and a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, "", false
	}
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		return User{}, "", false
	}
	return acct.user, s.issueToken(acct.user.ID), true
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mockapi-timing-pad"), bcrypt.DefaultCost)

func (s *Server) issueToken(userID string) string {
	t := uuid.NewString()
	s.tokens[t] = token{userID: userID, expiresAt: s.now().Add(s.tokenTTL)}
	return t
}

// lookupToken resolves a bearer token to its user, dropping it when
// expired.
func (s *Server) lookupToken(raw string) (User, bool) {
	tok, ok := s.tokens[raw]
	if !ok {
		return User{}, false
	}
	if !s.now().Before(tok.expiresAt) {
		delete(s.tokens, raw)
		return User{}, false
	}
	for _, acct := range s.accounts {
		if acct.user.ID == tok.userID {
			return acct.user, true
		}
	}
	return User{}, false
}

func (s *Server) revokeToken(raw string) {
	delete(s.tokens, raw)
}

func (s *Server) addPost(authorID, title, body string) Post {
	now := s.now().UTC()
	p := Post{
		ID:        fmt.Sprintf("p_%04d", s.nextPost),
		Title:     title,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextPost++
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	return p
}

func (s *Server) removePost(id string) bool {
	if _, ok := s.posts[id]; !ok {
		return false
	}
	delete(s.posts, id)
	for i, o := range s.postOrder {
		if o == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	return true
}
