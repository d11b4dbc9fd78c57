package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/remote"
	"github.com/cartify/api/internal/search"
	"github.com/cartify/api/internal/session"
)

func seedProducts(t *testing.T, collection *fakeCollection, products ...domain.Product) {
	t.Helper()
	for _, p := range products {
		doc, err := remote.Encode(p.ID, p)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		collection.seed(productsCollection, doc)
	}
}

func newCatalog(t *testing.T, collection *fakeCollection, local *session.LocalSession) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{Collection: collection, Session: local})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestNewCatalogServiceRequiresCollection(t *testing.T) {
	if _, err := NewCatalogService(CatalogServiceDeps{}); err == nil {
		t.Fatalf("expected missing-collection error")
	}
}

func TestListProducts(t *testing.T) {
	collection := newFakeCollection()
	seedProducts(t, collection,
		domain.Product{ID: "p2", Title: "Boots", Price: 80, CategoryID: "shoes"},
		domain.Product{ID: "p1", Title: "Apron", Price: 15, CategoryID: "kitchen"},
		domain.Product{ID: "p3", Title: "Clogs", Price: 30, CategoryID: "shoes"},
	)
	svc := newCatalog(t, collection, nil)

	all, err := svc.ListProducts(context.Background(), "")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	got := make([]string, len(all))
	for i, p := range all {
		got[i] = p.Title
	}
	if !reflect.DeepEqual(got, []string{"Apron", "Boots", "Clogs"}) {
		t.Fatalf("titles = %v", got)
	}

	shoes, err := svc.ListProducts(context.Background(), "  SHOES ")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(shoes) != 2 {
		t.Fatalf("category filter returned %d products", len(shoes))
	}
}

func TestListProductsUnavailable(t *testing.T) {
	collection := newFakeCollection()
	collection.failWith = unavailableErr()
	svc := newCatalog(t, collection, nil)

	if _, err := svc.ListProducts(context.Background(), ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGetProduct(t *testing.T) {
	collection := newFakeCollection()
	seedProducts(t, collection, domain.Product{ID: "p1", Title: "Boots", Price: 80})
	svc := newCatalog(t, collection, nil)

	got, err := svc.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Title != "Boots" {
		t.Fatalf("Title = %q", got.Title)
	}

	if _, err := svc.GetProduct(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetProduct(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestDecodeProductStripsMarkup(t *testing.T) {
	collection := newFakeCollection()
	seedProducts(t, collection, domain.Product{
		ID:          "p1",
		Title:       "Boots",
		Description: `Waterproof <script>alert(1)</script> <b>leather</b>`,
	})
	svc := newCatalog(t, collection, nil)

	got, err := svc.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Description != "Waterproof  leather" {
		t.Fatalf("Description = %q", got.Description)
	}
}

func TestSearchRecordsHistory(t *testing.T) {
	collection := newFakeCollection()
	seedProducts(t, collection,
		domain.Product{ID: "p1", Title: "Leather Boots", Price: 80},
		domain.Product{ID: "p2", Title: "Wool Scarf", Price: 25},
	)
	local, err := session.New(session.NewMemoryStore())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	svc := newCatalog(t, collection, local)

	results, err := svc.Search(context.Background(), "boots", search.Filters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "p1" {
		t.Fatalf("Search = %+v", results)
	}

	stored, err := local.RecentSearches()
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if !reflect.DeepEqual(stored, []string{"boots"}) {
		t.Fatalf("RecentSearches = %v", stored)
	}

	suggestions, err := svc.Suggestions(context.Background(), "boo")
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0] != "boots" {
		t.Fatalf("Suggestions = %v", suggestions)
	}
}

func TestSuggestionsSeededFromStoredHistory(t *testing.T) {
	local, err := session.New(session.NewMemoryStore())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := local.AddRecentSearch("winter coat"); err != nil {
		t.Fatalf("AddRecentSearch: %v", err)
	}
	svc := newCatalog(t, newFakeCollection(), local)

	got, err := svc.Suggestions(context.Background(), "coat")
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(got) != 1 || got[0] != "winter coat" {
		t.Fatalf("Suggestions = %v", got)
	}
}
