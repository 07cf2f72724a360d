// Package dashboard serves the counters shown on the user dashboard.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/application"
	"github.com/rentfusion/rentfusion/internal/db/controller/match"
	"github.com/rentfusion/rentfusion/internal/db/controller/saved"
	"github.com/rentfusion/rentfusion/internal/db/controller/searchprofile"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Path is the stats route below /api.
const Path = "/dashboard/stats"

// Stats are the dashboard counters of one user.
type Stats struct {
	ActiveSearches  int64 `json:"activeSearches"`
	NewMatches      int64 `json:"newMatches"`
	SavedProperties int64 `json:"savedProperties"`
	Applications    int64 `json:"applications"`
}

// Service is the dashboard handler service.
type Service struct {
	db *gorm.DB
}

// Init registers the dashboard routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB

	router.Get(Path, auth.RequireUser(deps.Auth), s.Get)

	return nil
}

// Get returns the counters of the caller.
func (s *Service) Get(c *fiber.Ctx) error {
	stats, err := Load(s.db, auth.CurrentUser(c).ID)
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

// Load counts active searches, unviewed matches, saved properties and
// applications of a user.
func Load(db *gorm.DB, userID string) (*Stats, error) {
	var (
		st  Stats
		err error
	)

	if st.ActiveSearches, err = searchprofile.CountActive(db, userID); err != nil {
		return nil, err
	}

	if st.NewMatches, err = match.CountUnviewed(db, userID); err != nil {
		return nil, err
	}

	if st.SavedProperties, err = saved.Count(db, userID); err != nil {
		return nil, err
	}

	if st.Applications, err = application.Count(db, userID); err != nil {
		return nil, err
	}

	return &st, nil
}
