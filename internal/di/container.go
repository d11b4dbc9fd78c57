// Package di assembles the runtime dependency graph: remote collaborators,
// the local session and the service layer.
package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cartify/api/internal/platform/config"
	"github.com/cartify/api/internal/remote"
	"github.com/cartify/api/internal/remote/firebaseauth"
	rfirestore "github.com/cartify/api/internal/remote/firestore"
	"github.com/cartify/api/internal/services"
	"github.com/cartify/api/internal/session"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog services.CatalogService
	Carts   services.CartService
	Orders  services.OrderService
	Users   services.UserService
}

// Container wires collaborators and services for runtime use.
type Container struct {
	Config   config.Config
	Services Services

	provider *rfirestore.Provider
}

// ContainerDeps carries optional overrides used in tests.
type ContainerDeps struct {
	// Collection overrides the Firestore backed document store.
	Collection remote.ItemCollection
	// Auth overrides the Firebase backed session source.
	Auth remote.SessionSource
	// Store overrides the local session store.
	Store session.Store
	// Clock defaults to time.Now.
	Clock  func() time.Time
	Logger *zap.Logger
}

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(ctx context.Context, cfg config.Config, deps ContainerDeps) (*Container, error) {
	if ctx == nil {
		return nil, errors.New("di: context is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	container := &Container{Config: cfg}

	collection := deps.Collection
	if collection == nil {
		provider := rfirestore.NewProvider(rfirestore.Config{
			ProjectID:    cfg.Firestore.ProjectID,
			EmulatorHost: cfg.Firestore.EmulatorHost,
			DialTimeout:  cfg.Firestore.DialTimeout,
		})
		firestoreCollection, err := rfirestore.NewCollection(provider)
		if err != nil {
			return nil, fmt.Errorf("di: build firestore collection: %w", err)
		}
		container.provider = provider
		collection = firestoreCollection
	}

	auth := deps.Auth
	if auth == nil {
		source, err := firebaseauth.NewSource(ctx, firebaseauth.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			APIKey:          cfg.Firebase.APIKey,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			Endpoint:        cfg.Firebase.AuthEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("di: build auth source: %w", err)
		}
		auth = source
	}

	store := deps.Store
	if store == nil {
		if cfg.Session.FilePath != "" {
			fileStore, err := session.NewFileStore(cfg.Session.FilePath)
			if err != nil {
				return nil, fmt.Errorf("di: open session store: %w", err)
			}
			store = fileStore
		} else {
			store = session.NewMemoryStore()
		}
	}

	local, err := session.New(store)
	if err != nil {
		return nil, fmt.Errorf("di: build local session: %w", err)
	}

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Collection: collection,
		Session:    local,
		Logger:     serviceLogger(logger.Named("catalog")),
	})
	if err != nil {
		return nil, fmt.Errorf("di: build catalog service: %w", err)
	}

	carts, err := services.NewCartService(services.CartServiceDeps{
		Collection: collection,
		Products:   catalog,
		Logger:     serviceLogger(logger.Named("cart")),
	})
	if err != nil {
		return nil, fmt.Errorf("di: build cart service: %w", err)
	}

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Collection: collection,
		Carts:      carts,
		Clock:      clock,
		Logger:     serviceLogger(logger.Named("order")),
	})
	if err != nil {
		return nil, fmt.Errorf("di: build order service: %w", err)
	}

	users, err := services.NewUserService(services.UserServiceDeps{
		Collection: collection,
		Auth:       auth,
		Session:    local,
		Clock:      clock,
		Logger:     serviceLogger(logger.Named("user")),
	})
	if err != nil {
		return nil, fmt.Errorf("di: build user service: %w", err)
	}

	container.Services = Services{
		Catalog: catalog,
		Carts:   carts,
		Orders:  orders,
		Users:   users,
	}
	return container, nil
}

// Close releases the remote store client when the container owns one.
func (c *Container) Close() error {
	if c == nil || c.provider == nil {
		return nil
	}
	return c.provider.Close()
}

// serviceLogger adapts the structured logger to the service layer's hook.
func serviceLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}
