// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package posts reads and mutates the workspace's posts over the API.
// Reads are served through the server-data cache; any write invalidates
// the whole posts family so the next read revalidates.
package posts

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"notewire/cli/internal/api"
	"notewire/cli/internal/cache"
)

// Post is one post in the workspace.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the payload for a new post.
type CreateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// keyAll is the cache family shared by the list and every item entry,
// so one invalidation covers them all.
var keyAll = cache.Key{"posts"}

func keyItem(id string) cache.Key { return cache.Key{"posts", id} }

// Service is the posts resource client.
type Service struct {
	api  *api.Client
	data *cache.Cache
}

func NewService(client *api.Client, data *cache.Cache) *Service {
	return &Service{api: client, data: data}
}

// List returns the posts visible to the current user.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	return cache.Fetch(ctx, s.data, keyAll, s.fetchList)
}

// Refresh revalidates the list in the foreground, skipping any fresh
// cached copy.
func (s *Service) Refresh(ctx context.Context) ([]Post, error) {
	return cache.FetchFresh(ctx, s.data, keyAll, s.fetchList)
}

func (s *Service) fetchList(ctx context.Context) ([]Post, error) {
	var out struct {
		Posts []Post `json:"posts"`
	}
	if err := s.api.GetJSON(ctx, "/posts", &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// Get returns one post by id.
func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Post{}, errors.New("post id is required")
	}
	return cache.Fetch(ctx, s.data, keyItem(id), func(ctx context.Context) (Post, error) {
		var out struct {
			Post Post `json:"post"`
		}
		if err := s.api.GetJSON(ctx, "/posts/"+url.PathEscape(id), &out); err != nil {
			return Post{}, err
		}
		return out.Post, nil
	})
}

// Create publishes a new post and drops the cached posts family.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Post{}, errors.New("post title is required")
	}

	var out struct {
		Post Post `json:"post"`
	}
	if err := s.api.PostJSON(ctx, "/posts", req, &out); err != nil {
		return Post{}, err
	}
	s.data.Invalidate(keyAll)
	return out.Post, nil
}

// Delete removes a post and drops the cached posts family.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("post id is required")
	}
	if err := s.api.DeleteJSON(ctx, "/posts/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	s.data.Invalidate(keyAll)
	return nil
}
