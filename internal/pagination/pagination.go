// Package pagination implements page math and opaque keyset cursors for list endpoints.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultPageSize is used when the request has no or an invalid pageSize.
	DefaultPageSize = 20
	// MaxPageSize caps the pageSize query parameter.
	MaxPageSize = 100
)

// Info describes the position of a page in a result set.
type Info struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Calculate returns the page info for total rows split in pages of pageSize.
func Calculate(total int64, page, pageSize int) Info {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return Info{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Offset returns the number of rows before page.
func Offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}

	return (page - 1) * pageSize
}

// Params are the pagination query parameters of a request.
type Params struct {
	Page     int
	PageSize int
	// Cursor is set when the request continues after a previous page.
	Cursor *Cursor
}

// Offset returns the row offset of p.
func (p Params) Offset() int {
	return Offset(p.Page, p.PageSize)
}

// ParseQuery reads page, pageSize and cursor from the query string.
func ParseQuery(c *fiber.Ctx) Params {
	p := Params{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", DefaultPageSize),
	}

	if p.Page < 1 {
		p.Page = 1
	}

	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}

	if raw := c.Query("cursor"); raw != "" {
		p.Cursor = DecodeCursor(raw)
	}

	return p
}

// Cursor points at the last row of the previous page, ordered by (created_at, id) descending.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// EncodeCursor returns the opaque cursor for a row.
func EncodeCursor(id string, createdAt time.Time) string {
	b, _ := json.Marshal(Cursor{ID: id, CreatedAt: createdAt.UTC()}) //nolint:errchkjson

	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCursor parses a cursor, returning nil when s is not a valid cursor.
func DecodeCursor(s string) *Cursor {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}

	var c Cursor
	if err = json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return nil
	}

	return &c
}
