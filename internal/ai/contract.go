package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
)

const (
	maxContractRunes   = 10000
	analysisConfidence = 92
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Flag is a problem found in a contract.
type Flag struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Location       string `json:"location,omitempty"`
	Quote          string `json:"quote,omitempty"`
	Severity       string `json:"severity,omitempty"`
	LegalReference string `json:"legalReference,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Term is a clause in favour of the tenant.
type Term struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnalysisMetadata describes the model run.
type AnalysisMetadata struct {
	AnalyzedAt time.Time `json:"analyzedAt"`
	Language   string    `json:"language"`
	TokensUsed int       `json:"tokensUsed"`
}

// ContractAnalysis is the review returned to the client.
type ContractAnalysis struct {
	OverallScore    int              `json:"overallScore"`
	RiskLevel       string           `json:"riskLevel"`
	Confidence      int              `json:"confidence"`
	RedFlags        []Flag           `json:"redFlags"`
	YellowFlags     []Flag           `json:"yellowFlags"`
	PositiveTerms   []Term           `json:"positiveTerms"`
	KeyTerms        map[string]any   `json:"keyTerms"`
	Summary         string           `json:"summary"`
	Recommendations []string         `json:"recommendations"`
	Metadata        AnalysisMetadata `json:"metadata"`
}

const contractSystemPrompt = `You are an expert Dutch rental law attorney with 20+ years of experience reviewing residential rental contracts. Your role is to analyze contracts for potential issues, unfair terms, and legal compliance.

FOCUS AREAS:
1. Deposit amount (max 2 months per Dutch law Article 7:231)
2. Rent amount (reasonable for property)
3. Contract type and duration (indefinite vs temporary)
4. Notice periods (should be clearly specified)
5. Maintenance responsibilities (tenant vs landlord)
6. Utility inclusion and costs
7. Termination clauses
8. Registration address (must be allowed)
9. Rent increase mechanisms (must follow legal limits)
10. Unfair clauses or unclear terms

LEGAL FRAMEWORK:
- Dutch Civil Code (Book 7)
- Rent Tribunal regulations
- Point-based system for rent caps
- Local municipality rules

OUTPUT STRUCTURE (JSON):
{
  "redFlags": [
    {
      "title": "Issue name",
      "description": "Detailed explanation",
      "location": "Page X, Clause Y",
      "quote": "Exact contract text",
      "severity": "high|medium|low",
      "legalReference": "Article reference",
      "recommendation": "Specific action to take"
    }
  ],
  "yellowFlags": [...],
  "positiveTerms": [
    {
      "title": "Positive term",
      "description": "Why this is good"
    }
  ],
  "keyTerms": {
    "monthlyRent": 1300,
    "deposit": 5200,
    "contractType": "indefinite",
    "noticePeriod": "unclear",
    "minimumStay": 12,
    "utilitiesIncluded": false,
    "registrationAllowed": true
  },
  "summary": "Overall assessment in plain language (2-3 paragraphs)",
  "recommendations": ["Action 1", "Action 2", ...]
}

Be thorough, accurate, and prioritize tenant protection while remaining fair to landlords.`

// HashDocument returns the hex sha256 of the contract text.
func HashDocument(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}

// AnalyzeContract reviews the first 10000 characters of a contract.
func (s *Service) AnalyzeContract(ctx context.Context, text string) (*ContractAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoContractText
	}

	if r := []rune(text); len(r) > maxContractRunes {
		text = string(r[:maxContractRunes])
	}

	resp, err := s.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: contractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Analyze this Dutch rental contract and return JSON:\n\n" + text},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("contract completion failed")

		return nil, ErrAnalysisFailed
	}

	reply := firstContent(resp)
	if reply == "" {
		reply = "{}"
	}

	if !gjson.Valid(reply) {
		log.Error().Str("reply", reply).Msg("contract completion returned invalid json")

		return nil, ErrAnalysisFailed
	}

	a := ParseAnalysis(gjson.Parse(reply))
	a.Metadata = AnalysisMetadata{
		AnalyzedAt: s.now().UTC(),
		Language:   "nl",
		TokensUsed: resp.Usage.TotalTokens,
	}

	return a, nil
}

// ParseAnalysis reads the model reply and computes the score and risk level.
func ParseAnalysis(doc gjson.Result) *ContractAnalysis {
	a := &ContractAnalysis{
		Confidence:      analysisConfidence,
		RedFlags:        flags(doc.Get("redFlags")),
		YellowFlags:     flags(doc.Get("yellowFlags")),
		PositiveTerms:   []Term{},
		KeyTerms:        map[string]any{},
		Summary:         doc.Get("summary").String(),
		Recommendations: []string{},
	}

	doc.Get("positiveTerms").ForEach(func(_, v gjson.Result) bool {
		a.PositiveTerms = append(a.PositiveTerms, Term{
			Title:       v.Get("title").String(),
			Description: v.Get("description").String(),
		})

		return true
	})

	if kt := doc.Get("keyTerms"); kt.IsObject() {
		if err := json.Unmarshal([]byte(kt.Raw), &a.KeyTerms); err != nil {
			a.KeyTerms = map[string]any{}
		}
	}

	doc.Get("recommendations").ForEach(func(_, v gjson.Result) bool {
		a.Recommendations = append(a.Recommendations, v.String())

		return true
	})

	if a.Summary == "" {
		a.Summary = "Analysis complete."
	}

	a.OverallScore = Score(a)
	a.RiskLevel = RiskLevel(a.OverallScore)

	return a
}

func flags(arr gjson.Result) []Flag {
	out := []Flag{}

	arr.ForEach(func(_, v gjson.Result) bool {
		out = append(out, Flag{
			Title:          v.Get("title").String(),
			Description:    v.Get("description").String(),
			Location:       v.Get("location").String(),
			Quote:          v.Get("quote").String(),
			Severity:       v.Get("severity").String(),
			LegalReference: v.Get("legalReference").String(),
			Recommendation: v.Get("recommendation").String(),
		})

		return true
	})

	return out
}

// Score starts at 100, subtracts per flag by severity, adds per positive
// term and clamps the result to 0..100.
func Score(a *ContractAnalysis) int {
	score := 100

	for _, f := range a.RedFlags {
		switch f.Severity {
		case "high":
			score -= 15
		case "medium":
			score -= 8
		default:
			score -= 3
		}
	}

	score -= 3 * len(a.YellowFlags)
	score += 2 * len(a.PositiveTerms)

	return max(0, min(100, score))
}

// RiskLevel maps a score to low (>= 80), medium (>= 60) or high.
func RiskLevel(score int) string {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 60:
		return RiskMedium
	default:
		return RiskHigh
	}
}
