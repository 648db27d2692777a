package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SetPageLinkHeaders adds RFC 8288 Link headers for page-numbered responses.
// Other query parameters (from, to) are carried over. Existing Link values
// are kept.
func SetPageLinkHeaders(c *fiber.Ctx, page, totalPages int) {
	if totalPages <= 0 {
		return
	}
	base := c.Path()
	extra := pageQuery(c)
	link := func(p int, rel string) string {
		return fmt.Sprintf(`<%s?page=%d%s>; rel="%s"`, base, p, extra, rel)
	}

	links := []string{link(0, "first")}
	if page > 0 {
		prev := min(page-1, totalPages-1)
		links = append(links, link(prev, "prev"))
	}
	if page+1 < totalPages {
		links = append(links, link(page+1, "next"))
	}
	links = append(links, link(totalPages-1, "last"))

	c.Append("Link", strings.Join(links, ", "))
}

func pageQuery(c *fiber.Ctx) string {
	var b strings.Builder
	for _, k := range []string{"from", "to"} {
		if v := c.Query(k); v != "" {
			fmt.Fprintf(&b, "&%s=%s", k, url.QueryEscape(v))
		}
	}
	return b.String()
}
