package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/platform/httpx"
	"github.com/cartify/api/internal/platform/pagination"
	"github.com/cartify/api/internal/search"
	"github.com/cartify/api/internal/services"
	"github.com/cartify/api/internal/validation"
)

// CatalogHandlers exposes the public product and search endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers backed by the catalog service.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the catalogue endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/search", h.search)
	r.Get("/search/suggestions", h.suggestions)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	params, err := pagination.ParseParams(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
		return
	}

	products, err := h.catalog.ListProducts(ctx, category)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	page, next, err := pagination.Slice(products, params)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
		return
	}
	writeJSONResponse(w, http.StatusOK, productListResponse{
		Products:      buildProductPayloads(page),
		NextPageToken: next,
	})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "productID")

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	if res := validation.SearchQuery(validation.Sanitize(query)); !res.OK {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", res.Message, http.StatusBadRequest))
		return
	}

	filters, err := parseSearchFilters(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
		return
	}

	products, err := h.catalog.Search(ctx, query, filters)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, productListResponse{Products: buildProductPayloads(products)})
}

func (h *CatalogHandlers) suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))

	suggestions, err := h.catalog.Suggestions(ctx, prefix)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func parseSearchFilters(r *http.Request) (search.Filters, error) {
	var filters search.Filters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("maxPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 {
			return search.Filters{}, errInvalidFilter("maxPrice")
		}
		filters.MaxPrice = &value
	}
	if raw := strings.TrimSpace(query.Get("minRating")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 || value > 5 {
			return search.Filters{}, errInvalidFilter("minRating")
		}
		filters.MinRating = &value
	}
	for _, category := range query["categoryId"] {
		if trimmed := strings.TrimSpace(category); trimmed != "" {
			filters.CategoryIDs = append(filters.CategoryIDs, trimmed)
		}
	}
	return filters, nil
}

type filterError string

func (e filterError) Error() string { return string(e) }

func errInvalidFilter(name string) error {
	return filterError(name + " must be a valid number")
}

type productListResponse struct {
	Products      []productPayload `json:"products"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

type productPayload struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	OldPrice     float64  `json:"oldPrice,omitempty"`
	PriceText    string   `json:"priceText"`
	DiscountText string   `json:"discountText,omitempty"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"review"`
	CategoryID   string   `json:"categoryId,omitempty"`
	PicURLs      []string `json:"picUrl,omitempty"`
	Sizes        []string `json:"size,omitempty"`
	Colors       []string `json:"color,omitempty"`
}

func buildProductPayloads(products []domain.Product) []productPayload {
	payloads := make([]productPayload, 0, len(products))
	for _, product := range products {
		payloads = append(payloads, buildProductPayload(product))
	}
	return payloads
}

func buildProductPayload(p domain.Product) productPayload {
	return productPayload{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		OldPrice:     p.OldPrice,
		PriceText:    domain.FormatPrice(p.Price),
		DiscountText: domain.DiscountText(p.OldPrice, p.Price),
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		CategoryID:   p.CategoryID,
		PicURLs:      p.PicURLs,
		Sizes:        p.Sizes,
		Colors:       p.Colors,
	}
}
