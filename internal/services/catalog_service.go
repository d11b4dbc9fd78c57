package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/remote"
	"github.com/cartify/api/internal/search"
	"github.com/cartify/api/internal/session"
)

const productsCollection = "items"

var (
	errCatalogCollectionRequired = errors.New("catalog service: item collection is required")
)

// CatalogServiceDeps wires the remote store and the search history for the
// catalogue.
type CatalogServiceDeps struct {
	Collection remote.ItemCollection
	// Session persists recent searches; optional, suggestions fall back to
	// the popular defaults without it.
	Session *session.LocalSession
	Logger  func(context.Context, string, map[string]any)
}

type catalogService struct {
	collection remote.ItemCollection
	local      *session.LocalSession
	sanitizer  *bluemonday.Policy
	logger     func(context.Context, string, map[string]any)

	mu      sync.Mutex
	matcher *search.Matcher
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Collection == nil {
		return nil, errCatalogCollectionRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		collection: deps.Collection,
		local:      deps.Session,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
	}, nil
}

// ListProducts returns the catalogue, optionally narrowed to one category.
func (s *catalogService) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	docs, err := s.collection.List(ctx, productsCollection)
	if err != nil {
		return nil, translateStoreError(err)
	}

	category := strings.TrimSpace(categoryID)
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := s.decodeProduct(ctx, doc)
		if err != nil {
			continue
		}
		if category != "" && !strings.EqualFold(product.CategoryID, category) {
			continue
		}
		products = append(products, product)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Title < products[j].Title
	})
	return products, nil
}

// GetProduct fetches a single product by identifier.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}

	docs, err := s.collection.Query(ctx, productsCollection, "id", id)
	if err != nil {
		return domain.Product{}, translateStoreError(err)
	}
	for _, doc := range docs {
		product, err := s.decodeProduct(ctx, doc)
		if err != nil {
			continue
		}
		if product.ID == id {
			return product, nil
		}
	}
	return domain.Product{}, ErrNotFound
}

// Search validates and records the query, then filters the catalogue with the
// substring and price-proximity rules.
func (s *catalogService) Search(ctx context.Context, query string, filters search.Filters) ([]domain.Product, error) {
	products, err := s.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	s.recordSearch(ctx, query)
	return search.Filter(products, query, filters), nil
}

// Suggestions returns history and popular completions for a prefix.
func (s *catalogService) Suggestions(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadMatcher(ctx).Suggestions(prefix), nil
}

func (s *catalogService) recordSearch(ctx context.Context, query string) {
	s.mu.Lock()
	accepted := s.loadMatcher(ctx).AddToHistory(query)
	s.mu.Unlock()
	if !accepted {
		return
	}
	if s.local == nil {
		return
	}
	if err := s.local.AddRecentSearch(query); err != nil {
		s.logger(ctx, "catalog.search_history_failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// loadMatcher builds the matcher from the persisted history on first use.
// Callers must hold s.mu.
func (s *catalogService) loadMatcher(ctx context.Context) *search.Matcher {
	if s.matcher != nil {
		return s.matcher
	}
	var recent []string
	if s.local != nil {
		stored, err := s.local.RecentSearches()
		if err != nil {
			s.logger(ctx, "catalog.search_history_load_failed", map[string]any{
				"error": err.Error(),
			})
		} else {
			recent = stored
		}
	}
	s.matcher = search.NewMatcher(recent)
	return s.matcher
}

func (s *catalogService) decodeProduct(ctx context.Context, doc remote.Document) (domain.Product, error) {
	var product domain.Product
	if err := remote.Decode(doc, &product); err != nil {
		s.logger(ctx, "catalog.decode_failed", map[string]any{
			"documentID": doc.ID,
			"error":      err.Error(),
		})
		return domain.Product{}, err
	}
	if product.ID == "" {
		product.ID = doc.ID
	}
	product.Description = strings.TrimSpace(s.sanitizer.Sanitize(product.Description))
	return product, nil
}
