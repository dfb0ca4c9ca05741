package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview/client"
	"github.com/openscholar/paperview/internal/domain"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"On Testing","description":"An abstract."}`))
	}))
	defer srv.Close()

	g := NewMetadataGateway(client.New(srv.URL+"/ipfs/"), nil)

	doc, err := g.Resolve(context.Background(), "QmTest")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if doc == nil || doc.Description != "An abstract." {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestResolveAbsences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := NewMetadataGateway(client.New(srv.URL+"/ipfs/"), nil)

	// Empty hash, missing document: both resolve to no metadata, no error.
	doc, err := g.Resolve(context.Background(), "")
	if err != nil || doc != nil {
		t.Fatalf("empty hash: (%v, %v), want (nil, nil)", doc, err)
	}
	doc, err = g.Resolve(context.Background(), "QmGone")
	if err != nil || doc != nil {
		t.Fatalf("missing document: (%v, %v), want (nil, nil)", doc, err)
	}
}

func TestResolveTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewMetadataGateway(client.New(srv.URL+"/ipfs/"), nil)

	_, err := g.Resolve(context.Background(), "QmFlaky")
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("5xx must surface as transient, got %v", err)
	}
}

func TestCacheKeyStable(t *testing.T) {
	if cacheKey("QmTest") != cacheKey("QmTest") {
		t.Fatalf("cache key not deterministic")
	}
	if cacheKey("QmA") == cacheKey("QmB") {
		t.Fatalf("distinct hashes collided")
	}
}
