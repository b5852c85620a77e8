package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"notewire/cli/internal/api"
	"notewire/cli/internal/cache"
)

// postServer is an in-memory posts backend for tests. hits counts
// upstream requests per method and path so tests can prove what the
// cache absorbed.
type postServer struct {
	mu    sync.Mutex
	posts map[string]Post
	order []string
	next  int
	hits  map[string]int
}

func newPostServer(seed ...Post) *postServer {
	s := &postServer{
		posts: make(map[string]Post),
		hits:  make(map[string]int),
		next:  1,
	}
	for _, p := range seed {
		s.posts[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *postServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.mu.Lock()
		list := make([]Post, 0, len(s.order))
		for _, id := range s.order {
			list = append(list, s.posts[id])
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"posts": list})
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
			return
		}
		s.mu.Lock()
		p := Post{
			ID:        "p_" + strconv.Itoa(s.next),
			Title:     req.Title,
			Body:      req.Body,
			AuthorID:  "u_1",
			CreatedAt: time.Now().UTC(),
		}
		s.next++
		s.posts[p.ID] = p
		s.order = append(s.order, p.ID)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"post": p})
	})
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		s.mu.Lock()
		p, ok := s.posts[r.PathValue("id")]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"post": p})
	})
	mux.HandleFunc("DELETE /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		id := r.PathValue("id")
		s.mu.Lock()
		_, ok := s.posts[id]
		if ok {
			delete(s.posts, id)
			for i, o := range s.order {
				if o == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		}
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *postServer) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[r.Method+" "+r.URL.Path]++
}

func (s *postServer) count(methodPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[methodPath]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, seed ...Post) (*Service, *postServer) {
	t.Helper()
	backend := newPostServer(seed...)
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	client := api.New(srv.URL, 2*time.Second)
	return NewService(client, cache.New(30*time.Second)), backend
}

var seedPosts = []Post{
	{ID: "p_a", Title: "Release notes", Body: "v1 ships friday", AuthorID: "u_1"},
	{ID: "p_b", Title: "Retro summary", Body: "keep the standups short", AuthorID: "u_2"},
}

func TestListServedFromCache(t *testing.T) {
	svc, backend := newTestService(t, seedPosts...)

	first, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != 2 || first[0].ID != "p_a" || first[1].ID != "p_b" {
		t.Fatalf("List = %+v, want the two seeded posts in order", first)
	}

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("second List: %v", err)
	}
	if got := backend.count("GET /posts"); got != 1 {
		t.Errorf("upstream list requests = %d, want 1", got)
	}
}

func TestRefreshBypassesFreshEntry(t *testing.T) {
	svc, backend := newTestService(t, seedPosts...)

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := backend.count("GET /posts"); got != 2 {
		t.Errorf("upstream list requests = %d, want 2", got)
	}
}

func TestGetCachesPerID(t *testing.T) {
	svc, backend := newTestService(t, seedPosts...)

	a, err := svc.Get(context.Background(), "p_a")
	if err != nil {
		t.Fatalf("Get p_a: %v", err)
	}
	if a.Title != "Release notes" {
		t.Errorf("a.Title = %q", a.Title)
	}
	if _, err := svc.Get(context.Background(), "p_b"); err != nil {
		t.Fatalf("Get p_b: %v", err)
	}
	if _, err := svc.Get(context.Background(), "p_a"); err != nil {
		t.Fatalf("Get p_a again: %v", err)
	}

	if got := backend.count("GET /posts/p_a"); got != 1 {
		t.Errorf("upstream requests for p_a = %d, want 1", got)
	}
	if got := backend.count("GET /posts/p_b"); got != 1 {
		t.Errorf("upstream requests for p_b = %d, want 1", got)
	}
}

func TestGetValidatesID(t *testing.T) {
	svc, backend := newTestService(t)

	for _, id := range []string{"", "   "} {
		if _, err := svc.Get(context.Background(), id); err == nil {
			t.Errorf("Get(%q): expected error", id)
		}
	}
	if got := backend.count("GET /posts/"); got != 0 {
		t.Errorf("upstream requests = %d, want 0", got)
	}
}

func TestGetUnknownID(t *testing.T) {
	svc, _ := newTestService(t, seedPosts...)

	_, err := svc.Get(context.Background(), "p_missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *api.APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestCreateInvalidatesList(t *testing.T) {
	svc, backend := newTestService(t, seedPosts...)

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}

	created, err := svc.Create(context.Background(), CreateRequest{Title: "Launch day", Body: "it works"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created post has no id")
	}

	after, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List after create: %v", err)
	}
	if len(after) != 3 || after[2].ID != created.ID {
		t.Errorf("List after create = %+v, want the new post last", after)
	}
	if got := backend.count("GET /posts"); got != 2 {
		t.Errorf("upstream list requests = %d, want 2 (create must invalidate)", got)
	}
}

func TestCreateValidatesTitle(t *testing.T) {
	svc, backend := newTestService(t)

	if _, err := svc.Create(context.Background(), CreateRequest{Body: "no title"}); err == nil {
		t.Error("expected validation error")
	}
	if got := backend.count("POST /posts"); got != 0 {
		t.Errorf("upstream requests = %d, want 0", got)
	}
}

func TestDeleteInvalidatesFamily(t *testing.T) {
	svc, backend := newTestService(t, seedPosts...)

	if _, err := svc.Get(context.Background(), "p_a"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}

	if err := svc.Delete(context.Background(), "p_a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Both the item and the list entry were dropped, so these re-fetch.
	if _, err := svc.Get(context.Background(), "p_a"); err == nil {
		t.Error("Get after delete: expected 404, got cached value")
	}
	after, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(after) != 1 || after[0].ID != "p_b" {
		t.Errorf("List after delete = %+v, want only p_b", after)
	}
	if got := backend.count("GET /posts/p_a"); got != 2 {
		t.Errorf("upstream requests for p_a = %d, want 2", got)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	svc, _ := newTestService(t, seedPosts...)

	err := svc.Delete(context.Background(), "p_missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want 404", err)
	}
}
