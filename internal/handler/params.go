package handler

import (
	"strconv"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func invalidField(field, message string) error {
	return &RequestError{Fields: map[string]string{field: message}}
}

// pathID parses a positive integer path parameter
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidField(name, "Must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter
func queryInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidField(name, "Must be an integer")
	}
	return &n, nil
}

// requireQueryInt parses a mandatory integer query parameter
func requireQueryInt(c echo.Context, name string) (int, error) {
	n, err := queryInt(c, name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, invalidField(name, name+" is required")
	}
	return *n, nil
}

// queryID parses an optional positive integer query parameter
func queryID(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalidField(name, "Must be a positive integer")
	}
	return &id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter
func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := util.ParseDate(raw)
	if err != nil {
		return nil, invalidField(name, "Must be in YYYY-MM-DD format")
	}
	return &d, nil
}

// requireDateRange parses the mandatory startDate and endDate query parameters
func requireDateRange(c echo.Context) (time.Time, time.Time, error) {
	start, err := queryDate(c, "startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start == nil {
		return time.Time{}, time.Time{}, domain.ErrStartDateRequired
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end == nil {
		return time.Time{}, time.Time{}, domain.ErrEndDateRequired
	}
	return *start, *end, nil
}

// parseBodyDate parses an optional YYYY-MM-DD body field
func parseBodyDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := util.ParseDate(*raw)
	if err != nil {
		return nil, invalidField(field, "Must be in YYYY-MM-DD format")
	}
	return &d, nil
}

func formatDate(t time.Time) string {
	return t.Format(util.DateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTimestamp(*t)
	return &s
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
