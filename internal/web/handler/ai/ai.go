// Package ai serves letter generation and contract analysis.
package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	aiservice "github.com/rentfusion/rentfusion/internal/ai"
	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/controller/letter"
	"github.com/rentfusion/rentfusion/internal/db/models"
	"github.com/rentfusion/rentfusion/internal/ratelimit"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Route paths below /api.
const (
	GenerateLetterPath  = "/ai/generate-letter"
	AnalyzeContractPath = "/ai/analyze-contract"
)

// Service is the ai handler service.
type Service struct {
	db   *gorm.DB
	auth *auth.Service
	ai   *aiservice.Service
}

// LetterResponse is a generated letter with the id it was stored under.
type LetterResponse struct {
	*aiservice.Letter
	ID string `json:"id"`
}

type contractRequest struct {
	Text       string `json:"text" form:"text"`
	PropertyID string `json:"propertyId" form:"propertyId"`
}

// Init registers the ai routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil || deps.AI == nil || deps.Limiter == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB
	s.auth = deps.Auth
	s.ai = deps.AI

	requireUser := auth.RequireUser(deps.Auth)

	router.Post(GenerateLetterPath,
		requireUser,
		deps.Limiter.Middleware(ratelimit.RouteGenerateLetter),
		s.GenerateLetter,
	)
	router.Post(AnalyzeContractPath,
		requireUser,
		auth.RequireFeature(auth.FeatureContractAnalysis, "Contract analysis is a Premium feature"),
		deps.Limiter.Middleware(ratelimit.RouteAnalyzeContract),
		s.AnalyzeContract,
	)

	return nil
}

// GenerateLetter writes an application letter within the monthly quota of
// the caller's tier and stores it.
func (s *Service) GenerateLetter(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)

	limit := s.auth.Limits(u).AILetters

	used, err := letter.CountSince(s.db, u.ID, letter.MonthStart(time.Now()))
	if err != nil {
		return err
	}

	if !auth.Allows(limit, used) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Monthly letter limit reached",
			"limit": limit,
			"used":  used,
		})
	}

	var in aiservice.LetterInput
	if err = c.BodyParser(&in); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	l, err := s.ai.GenerateLetter(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, aiservice.ErrGenerationFailed):
			return handler.JSONError(c, fiber.StatusInternalServerError, "Failed to generate letter. Please try again.")
		case errors.Is(err, aiservice.ErrNotConfigured):
			return handler.JSONError(c, fiber.StatusServiceUnavailable, "Letter generation is not available")
		}

		return err
	}

	in.Normalize()

	rec := &models.GeneratedLetter{
		UserID:     u.ID,
		Subject:    l.Subject,
		Content:    l.Content,
		Language:   l.Language,
		Tone:       in.Tone,
		WordCount:  l.WordCount,
		TokensUsed: l.TokensUsed,
	}

	if in.PropertyID != "" {
		rec.PropertyID = &in.PropertyID
	}

	if err = letter.Create(s.db, rec); err != nil {
		return err
	}

	log.Info().Str("user_id", u.ID).Int("tokens", l.TokensUsed).Msg("letter generated")

	return c.JSON(LetterResponse{Letter: l, ID: rec.ID})
}

// AnalyzeContract reviews an uploaded or pasted contract. It is stored
// when the request names a property.
func (s *Service) AnalyzeContract(c *fiber.Ctx) error {
	var req contractRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return handler.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if fh, err := c.FormFile("file"); err == nil {
		text, rErr := readContract(fh)
		if rErr != nil {
			if errors.Is(rErr, errPDF) {
				return handler.JSONError(c, fiber.StatusUnsupportedMediaType,
					"PDF contracts are not supported, upload plain text or paste the contract")
			}

			return handler.JSONError(c, fiber.StatusBadRequest, "Could not read file")
		}

		req.Text = text
	}

	if strings.TrimSpace(req.Text) == "" {
		return handler.JSONError(c, fiber.StatusBadRequest, "File or text required")
	}

	a, err := s.ai.AnalyzeContract(c.UserContext(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, aiservice.ErrNoContractText):
			return handler.JSONError(c, fiber.StatusBadRequest, "File or text required")
		case errors.Is(err, aiservice.ErrAnalysisFailed):
			return handler.JSONError(c, fiber.StatusInternalServerError, "Failed to analyze contract")
		case errors.Is(err, aiservice.ErrNotConfigured):
			return handler.JSONError(c, fiber.StatusServiceUnavailable, "Contract analysis is not available")
		}

		return err
	}

	if req.PropertyID != "" {
		if err = s.store(auth.CurrentUser(c).ID, req.PropertyID, req.Text, a); err != nil {
			return err
		}
	}

	return c.JSON(a)
}

func (s *Service) store(userID, propertyID, text string, a *aiservice.ContractAnalysis) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return letter.CreateAnalysis(s.db, &models.ContractAnalysis{
		UserID:       userID,
		PropertyID:   propertyID,
		Analysis:     string(doc),
		DocumentHash: aiservice.HashDocument(text),
		OverallScore: a.OverallScore,
		RiskLevel:    a.RiskLevel,
	})
}

var errPDF = errors.New("pdf upload")

func readContract(fh *multipart.FileHeader) (string, error) {
	if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") ||
		strings.Contains(fh.Header.Get(fiber.HeaderContentType), "pdf") {
		return "", errPDF
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", errPDF
	}

	return string(data), nil
}
