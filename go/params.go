package petstoreserver

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// pageParams reads page and page_size; junk values fall back to defaults downstream.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return page, size
}

func decimalQuery(c *gin.Context, key string) (*decimal.Decimal, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{key: "must be a decimal number"}))
		return nil, false
	}
	return &d, true
}

func timeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	respondProblem(c, apierrors.NewValidationProblem(map[string]string{key: "must be an ISO 8601 date or datetime"}))
	return nil, false
}
