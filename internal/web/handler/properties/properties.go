// Package properties serves the property search and the listing ingest.
package properties

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/cache"
	"github.com/rentfusion/rentfusion/internal/db/controller/property"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/matcher"
	"github.com/rentfusion/rentfusion/internal/pagination"
	"github.com/rentfusion/rentfusion/internal/ratelimit"
	"github.com/rentfusion/rentfusion/internal/validation"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Route paths below /api.
const (
	Path       = "/properties"
	IngestPath = Path + "/ingest"

	// CacheHeader reports HIT or MISS for searches.
	CacheHeader = "X-Cache"
)

// Service is the properties handler service.
type Service struct {
	db      *gorm.DB
	cache   *cache.Cache
	matcher *matcher.Matcher
}

// searchQuery is the query string of a search.
type searchQuery struct {
	City         string   `query:"city"`
	PriceMin     *float64 `query:"priceMin"`
	PriceMax     *float64 `query:"priceMax"`
	PropertyType string   `query:"propertyType"`
	BedroomsMin  *int     `query:"bedroomsMin"`
	Furnished    *bool    `query:"furnished"`
	Keyword      string   `query:"keyword"`
}

// searchKey is what a cached search depends on.
type searchKey struct {
	Filters  property.Filters   `json:"filters"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Cursor   *pagination.Cursor `json:"cursor,omitempty"`
}

// IngestResult is the stored property with the matches it created.
type IngestResult struct {
	Property *models.Property       `json:"property"`
	Created  bool                   `json:"created"`
	Matches  []models.PropertyMatch `json:"matches"`
}

// Init registers the property routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil || deps.Cache == nil ||
		deps.Limiter == nil || deps.Matcher == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.cache = deps.Cache
	s.matcher = deps.Matcher

	router.Get(Path,
		auth.OptionalUser(deps.Auth),
		deps.Limiter.Middleware(ratelimit.RouteSearch),
		s.Search,
	)
	router.Post(IngestPath, auth.RequireCronSecret(deps.Cfg.Cron.Secret), s.Ingest)
	router.Get(Path+"/:id", s.Get)

	return nil
}

// Search returns a page of active properties, cached per filters and page.
func (s *Service) Search(c *fiber.Ctx) error {
	var q searchQuery
	if err := c.QueryParser(&q); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid query")
	}

	if !validation.IsValidPriceRange(q.PriceMin, q.PriceMax) {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid price range")
	}

	f := property.Filters{
		City:         q.City,
		PriceMin:     q.PriceMin,
		PriceMax:     q.PriceMax,
		PropertyType: q.PropertyType,
		BedroomsMin:  q.BedroomsMin,
		Furnished:    q.Furnished,
		Keyword:      q.Keyword,
	}
	p := pagination.ParseQuery(c)

	var page property.Page

	hit, err := s.cache.Remember(
		cache.SearchKey(searchKey{Filters: f, Page: p.Page, PageSize: p.PageSize, Cursor: p.Cursor}),
		0, &page,
		func() (any, error) { return property.Search(s.db, f, p) },
	)
	if err != nil {
		return err
	}

	c.Set(CacheHeader, map[bool]string{true: "HIT", false: "MISS"}[hit])

	return c.JSON(page)
}

// Get returns one property.
func (s *Service) Get(c *fiber.Ctx) error {
	p, err := property.Get(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, property.ErrPropertyNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, "Property not found")
		}

		return err
	}

	return c.JSON(p)
}

// Ingest stores a scraped listing, drops cached searches and matches the
// listing against the active search profiles.
func (s *Service) Ingest(c *fiber.Ctx) error {
	// listings are active unless the body says otherwise
	p := models.Property{IsActive: true}
	if err := c.BodyParser(&p); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if p.Title == "" || p.City == "" || p.Price <= 0 {
		return handler.JSONError(c, fiber.StatusBadRequest, "title, city and price are required")
	}

	created, err := property.Upsert(s.db, &p)
	if err != nil {
		if errors.Is(err, property.ErrMissingKey) {
			return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
		}

		return err
	}

	dropped := s.cache.Invalidate(cache.SearchPrefix)

	res := IngestResult{Property: &p, Created: created, Matches: []models.PropertyMatch{}}

	if p.IsActive {
		matches, mErr := s.matcher.MatchProperty(c.UserContext(), &p)
		if mErr != nil {
			return mErr
		}

		if matches != nil {
			res.Matches = matches
		}
	}

	log.Info().
		Str("property_id", p.ID).
		Bool("created", created).
		Int("matches", len(res.Matches)).
		Int("cache_dropped", dropped).
		Msg("property ingested")

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(res)
}
