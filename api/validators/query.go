package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

const maxQueryLen = 64

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryStatus reads an optional order status filter.
func ParseQueryStatus(r *http.Request, key string) (enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown status").WithDetails(map[string]any{"field": key})
	}
	return status, nil
}

// ParseQueryCategory reads an optional product category filter.
func ParseQueryCategory(r *http.Request, key string) (enums.ProductCategory, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	category, err := enums.ParseProductCategory(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category").WithDetails(map[string]any{"field": key})
	}
	return category, nil
}

// QuerySearch returns the trimmed, length-capped free text search term.
func QuerySearch(r *http.Request, key string) string {
	return SanitizeString(r.URL.Query().Get(key), maxQueryLen)
}
