// Package matcher scores new properties against saved search profiles and
// alerts the owners of profiles that match.
package matcher

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/db/controller/match"
	"github.com/rentfusion/rentfusion/internal/db/controller/searchprofile"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/notify"
)

// Threshold is the score a property must exceed to match.
const Threshold = 50

// Match reasons.
const (
	ReasonCity      = "city"
	ReasonPrice     = "price"
	ReasonBedrooms  = "bedrooms"
	ReasonFurnished = "furnished"
	ReasonPets      = "pets"
	ReasonKeywords  = "keywords"
)

var (
	metricsOnce sync.Once //nolint:gochecknoglobals
	created     prometheus.Counter
)

func matchesCreated() prometheus.Counter {
	metricsOnce.Do(func() {
		created = promauto.NewCounter(prometheus.CounterOpts{
			Name: "rentfusion_matches_created_total",
			Help: "Property matches stored for search profiles.",
		})
	})

	return created
}

// Alerter sends the alert of a new match.
type Alerter interface {
	SendPropertyAlert(ctx context.Context, p notify.AlertPayload) ([]notify.Result, error)
}

// Matcher matches properties to search profiles.
type Matcher struct {
	db      *gorm.DB
	alerter Alerter
}

// New returns a matcher. alerter may be nil to store matches silently.
func New(db *gorm.DB, alerter Alerter) *Matcher {
	return &Matcher{db: db, alerter: alerter}
}

// Score rates how well a property fits a profile, 0 to 100, and names
// the criteria that contributed.
func Score(p *models.Property, sp *models.SearchProfile) (int, []string) {
	if !slices.ContainsFunc(sp.Cities, func(c string) bool { return strings.EqualFold(c, p.City) }) {
		return 0, nil
	}

	score := 30
	reasons := []string{ReasonCity}

	lo, hi := 0.0, math.Inf(1)
	if sp.PriceMin != nil {
		lo = *sp.PriceMin
	}

	if sp.PriceMax != nil {
		hi = *sp.PriceMax
	}

	switch {
	case p.Price > hi:
		return 0, nil
	case p.Price >= lo:
		score += 25
		reasons = append(reasons, ReasonPrice)
	}

	if sp.BedroomsMin != nil && *sp.BedroomsMin > 0 && p.Bedrooms > 0 && p.Bedrooms >= *sp.BedroomsMin {
		score += 15
		reasons = append(reasons, ReasonBedrooms)
	}

	if sp.Furnished != nil && *sp.Furnished == p.Furnished {
		score += 10
		reasons = append(reasons, ReasonFurnished)
	}

	if sp.PetsAllowed && p.PetsAllowed {
		score += 10
		reasons = append(reasons, ReasonPets)
	}

	if len(sp.Keywords) > 0 {
		text := strings.ToLower(p.Title + " " + p.Description)

		var found int
		for _, kw := range sp.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				found++
			}
		}

		if found > 0 {
			score += min(found*5, 10)
			reasons = append(reasons, ReasonKeywords)
		}
	}

	return min(score, 100), reasons
}

// MatchProperty stores a match for every profile the property fits and
// alerts its owner. Profiles that already matched the property are skipped.
func (m *Matcher) MatchProperty(ctx context.Context, p *models.Property) ([]models.PropertyMatch, error) {
	profiles, err := searchprofile.ForMatching(m.db)
	if err != nil {
		return nil, err
	}

	matches := []models.PropertyMatch{}

	for i := range profiles {
		sp := &profiles[i]

		score, reasons := Score(p, sp)
		if score <= Threshold {
			continue
		}

		pm := models.PropertyMatch{
			PropertyID:      p.ID,
			SearchProfileID: sp.ID,
			UserID:          sp.UserID,
			MatchScore:      score,
			MatchReasons:    reasons,
		}

		if err := match.Create(m.db, &pm); err != nil {
			if errors.Is(err, match.ErrDuplicate) {
				continue
			}

			return matches, err
		}

		matchesCreated().Inc()
		matches = append(matches, pm)

		log.Info().Str("property_id", p.ID).Str("user_id", sp.UserID).Int("score", score).Msg("property matched")

		if m.alerter == nil {
			continue
		}

		_, err := m.alerter.SendPropertyAlert(ctx, notify.AlertPayload{
			UserID:     sp.UserID,
			MatchID:    pm.ID,
			Property:   p,
			MatchScore: score,
			Channels:   sp.Channels(),
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", sp.UserID).Msg("failed to send property alert")
		}
	}

	return matches, nil
}
