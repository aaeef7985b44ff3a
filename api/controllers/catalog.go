package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/stallpos/api/responses"
	"github.com/angelmondragon/stallpos/api/validators"
	"github.com/angelmondragon/stallpos/internal/catalog"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

// CatalogService is the catalog side of the store.
type CatalogService interface {
	Catalog() catalog.Catalog
	Product(id string) (catalog.ProductView, error)
	SummarizeSelections(id string, selections catalog.Selections) ([]string, error)
	ReplaceCatalog(ctx context.Context, in catalog.Input) (catalog.Catalog, error)
	ResetCatalog(ctx context.Context) (catalog.Catalog, error)
	Registry() *catalog.Registry
}

func GetCatalog(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Catalog())
	}
}

// ReplaceCatalog swaps the whole catalog. The body is sanitized, so only
// duplicate product ids or a non-object body are rejected.
func ReplaceCatalog(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := validators.ReadJSONBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := svc.ReplaceCatalog(r.Context(), catalog.DecodeInput(raw))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, next)
	}
}

func ResetCatalog(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next, err := svc.ResetCatalog(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, next)
	}
}

func ListTemplates(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Registry().Templates())
	}
}

func ListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.Categories())
	}
}

// GetProduct returns one product with its option template resolved.
func GetProduct(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Product(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type summaryRequest struct {
	Selections map[string]any `json:"selections" validate:"required"`
}

type summaryResponse struct {
	ProductID string   `json:"productId"`
	Summary   []string `json:"summary"`
}

// SummarizeProduct renders the kitchen labels for a set of selections.
func SummarizeProduct(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload summaryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.SummarizeSelections(id, catalog.Selections(payload.Selections))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaryResponse{ProductID: id, Summary: summary})
	}
}

func productID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return id, nil
}
