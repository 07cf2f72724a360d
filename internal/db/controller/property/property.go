// Package property provides queries on the properties table.
package property

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/pagination"
)

var (
	// ErrPropertyNotFound is returned when no property matches.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrMissingKey is returned on upsert without source or external id.
	ErrMissingKey = errors.New("property source and external id are required")
)

// Filters narrow a property search. Zero values do not filter.
type Filters struct {
	City         string   `json:"city,omitempty"`
	PriceMin     *float64 `json:"priceMin,omitempty"`
	PriceMax     *float64 `json:"priceMax,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	BedroomsMin  *int     `json:"bedroomsMin,omitempty"`
	Furnished    *bool    `json:"furnished,omitempty"`
	Keyword      string   `json:"keyword,omitempty"`
}

// Page is one page of a search.
type Page struct {
	Items []models.Property `json:"items"`
	// Pagination is set in page mode.
	Pagination *pagination.Info `json:"pagination,omitempty"`
	// NextCursor is set in cursor mode while more rows may follow.
	NextCursor string `json:"nextCursor,omitempty"`
}

// Get retrieves a property by id.
func Get(db *gorm.DB, id string) (*models.Property, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Property
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}

		return nil, fmt.Errorf("failed to query property: %w", err)
	}

	return &p, nil
}

func applyFilters(q *gorm.DB, f Filters) *gorm.DB {
	q = q.Where("is_active = ?", true)

	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}

	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}

	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}

	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}

	if f.BedroomsMin != nil {
		q = q.Where("bedrooms >= ?", *f.BedroomsMin)
	}

	if f.Furnished != nil {
		q = q.Where("furnished = ?", *f.Furnished)
	}

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	return q
}

// Search returns active properties, newest first. With a cursor it returns
// the rows after the cursor, otherwise the requested page and its info.
func Search(db *gorm.DB, f Filters, p pagination.Params) (*Page, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := applyFilters(db.Model(&models.Property{}), f).Session(&gorm.Session{})

	if p.Cursor != nil {
		var items []models.Property

		err := q.Where("(created_at < ? OR (created_at = ? AND id < ?))",
			p.Cursor.CreatedAt, p.Cursor.CreatedAt, p.Cursor.ID).
			Order("created_at DESC, id DESC").
			Limit(p.PageSize).
			Find(&items).Error
		if err != nil {
			return nil, fmt.Errorf("failed to search properties: %w", err)
		}

		return cursorPage(items, p.PageSize), nil
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	var items []models.Property

	err := q.Order("created_at DESC, id DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	info := pagination.Calculate(total, p.Page, p.PageSize)
	page := cursorPage(items, p.PageSize)
	page.Pagination = &info

	return page, nil
}

func cursorPage(items []models.Property, size int) *Page {
	if items == nil {
		items = []models.Property{}
	}

	page := &Page{Items: items}
	if len(items) == size && size > 0 {
		last := items[len(items)-1]
		page.NextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return page
}

// Upsert inserts p or updates the listing with the same source and external id.
// p.ID is set to the stored row. It reports whether a new row was created.
func Upsert(db *gorm.DB, p *models.Property) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	if p.Source == "" || p.ExternalID == "" {
		return false, ErrMissingKey
	}

	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = time.Now().UTC()
	}

	if p.Currency == "" {
		p.Currency = "EUR"
	}

	var existing models.Property

	err := db.Where("source = ? AND external_id = ?", p.Source, p.ExternalID).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p.ID = ""
		if err = db.Create(p).Error; err != nil {
			return false, fmt.Errorf("failed to create property: %w", err)
		}

		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to query property: %w", err)
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt

	// Save writes zero values too, a listing can turn unfurnished or inactive
	if err = db.Omit(clause.Associations).Save(p).Error; err != nil {
		return false, fmt.Errorf("failed to update property: %w", err)
	}

	return false, nil
}
