package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// ListReportsHandler returns one page of report summaries.
// Query: page (0-based), from, to (RFC 3339, inclusive).
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := queryPage(c)
		if err != nil {
			return respondError(c, err)
		}
		tr, err := queryTimeRange(c)
		if err != nil {
			return respondError(c, err)
		}

		p, err := deps.Weather.ListReports(c.UserContext(), tr, page)
		if err != nil {
			return respondError(c, err)
		}

		SetPageLinkHeaders(c, p.Page, p.TotalPages)
		return c.JSON(p)
	}
}

// GetReportHandler returns a full report by path id.
func GetReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return getReport(c, deps, c.Params("id"))
	}
}

// LegacyGetReportHandler serves GET /weather?id=.
func LegacyGetReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return getReport(c, deps, c.Query("id"))
	}
}

func getReport(c *fiber.Ctx, deps *Dependencies, id string) error {
	r, err := deps.Weather.GetReport(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

// queryFloat parses an optional float query parameter. Absent or empty
// values yield nil.
func queryFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("%s must be a number.", name)}
	}
	return &v, nil
}

func queryPage(c *fiber.Ctx) (int, error) {
	raw := c.Query("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, &domain.ValidationError{Message: "page must be a non-negative integer."}
	}
	return page, nil
}

func queryTimeRange(c *fiber.Ctx) (domain.TimeRange, error) {
	var tr domain.TimeRange
	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &tr.From},
		{"to", &tr.To},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return tr, &domain.ValidationError{Message: fmt.Sprintf("%s must be an RFC 3339 timestamp.", q.name)}
		}
		*q.dst = &t
	}
	return tr, nil
}
