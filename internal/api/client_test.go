// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	nwerrors "notewire/cli/internal/errors"
)

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":"hi"}`))
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"value": in["value"]})
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid email"}`))
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})
	mux.HandleFunc("/denied", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	})
	return httptest.NewServer(mux)
}

func TestGetJSON(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := New(srv.URL, time.Second)

	var out struct {
		Value string `json:"value"`
	}
	if err := c.GetJSON(context.Background(), "/ok", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Value != "hi" {
		t.Errorf("Value = %q, want hi", out.Value)
	}
}

func TestPostJSON(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := New(srv.URL, time.Second)

	var out struct {
		Value string `json:"value"`
	}
	err := c.PostJSON(context.Background(), "/echo", map[string]string{"value": "ping"}, &out)
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out.Value != "ping" {
		t.Errorf("Value = %q, want ping", out.Value)
	}
}

func TestErrorEnvelope(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := New(srv.URL, time.Second)

	err := c.GetJSON(context.Background(), "/bad", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid email" {
		t.Errorf("Message = %q, want invalid email", apiErr.Message)
	}
}

func TestPlainTextErrorBody(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := New(srv.URL, time.Second)

	err := c.GetJSON(context.Background(), "/boom", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "internal" {
		t.Errorf("Message = %q, want internal", apiErr.Message)
	}
}

func TestUnauthorizedKind(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := New(srv.URL, time.Second)

	err := c.GetJSON(context.Background(), "/denied", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !nwerrors.IsKind(err, nwerrors.Unauthorized) {
		t.Errorf("error kind = %v, want unauthorized", nwerrors.KindOf(err))
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("unauthorized error must still carry the response details")
	}
	if apiErr.Message != "token expired" {
		t.Errorf("Message = %q, want token expired", apiErr.Message)
	}
}

func TestNetworkErrorKind(t *testing.T) {
	srv := newTestServer()
	base := srv.URL
	srv.Close() // connection refused from here on

	c := New(base, time.Second)

	err := c.GetJSON(context.Background(), "/ok", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !nwerrors.IsKind(err, nwerrors.Network) {
		t.Errorf("error kind = %v, want network", nwerrors.KindOf(err))
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	c := New(srv.URL+"///", time.Second)
	if err := c.GetJSON(context.Background(), "/ok", nil); err != nil {
		t.Fatalf("GetJSON with slashed base URL: %v", err)
	}
}
