package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/rentfusion/rentfusion/internal/validation"
)

// LetterInput describes the applicant and the property.
type LetterInput struct {
	// applicant
	FullName        string   `json:"fullName" validate:"required,min=2"`
	Age             *int     `json:"age,omitempty" validate:"omitempty,gt=0,lt=130"`
	Occupation      string   `json:"occupation" validate:"required"`
	MonthlyIncome   *float64 `json:"monthlyIncome" validate:"required"`
	CurrentLocation string   `json:"currentLocation" validate:"required"`
	MoveReason      string   `json:"moveReason" validate:"required"`
	Hobbies         []string `json:"hobbies,omitempty"`
	HasPets         bool     `json:"hasPets"`
	PetDescription  string   `json:"petDescription,omitempty"`

	// property
	PropertyID    string   `json:"propertyId,omitempty"`
	PropertyTitle string   `json:"propertyTitle" validate:"required"`
	PropertyCity  string   `json:"propertyCity" validate:"required"`
	PropertyType  string   `json:"propertyType" validate:"required,oneof=apartment studio house room"`
	PropertyPrice *float64 `json:"propertyPrice" validate:"required"`
	LandlordName  string   `json:"landlordName,omitempty"`
	LandlordType  string   `json:"landlordType,omitempty" validate:"omitempty,oneof=private agency corporation"`

	// preferences
	Language     string `json:"language" validate:"omitempty,oneof=en nl"`
	Tone         string `json:"tone" validate:"omitempty,oneof=professional friendly formal"`
	IncludePhoto bool   `json:"includePhoto"`
	CustomPrompt string `json:"customPrompt,omitempty" validate:"omitempty,max=1000"`
}

// Normalize applies the default language and tone.
func (in *LetterInput) Normalize() {
	if in.Language == "" {
		in.Language = "en"
	}

	if in.Tone == "" {
		in.Tone = "friendly"
	}
}

// Letter is a generated application letter.
type Letter struct {
	Content     string    `json:"content"`
	Subject     string    `json:"subject"`
	Language    string    `json:"language"`
	WordCount   int       `json:"wordCount"`
	GeneratedAt time.Time `json:"generatedAt"`
	TokensUsed  int       `json:"tokensUsed"`
}

var subjectPrefix = regexp.MustCompile(`(?i)^(Subject:|Onderwerp:)`)

var toneInstructions = map[string]string{ //nolint:gochecknoglobals
	"professional": "Use a professional, business-like tone. Be concise and respectful.",
	"friendly":     "Use a warm, personable tone while maintaining professionalism. Show personality.",
	"formal":       "Use very formal language. Be respectful and traditional in approach.",
}

// GenerateLetter validates the input and asks the model for a letter.
func (s *Service) GenerateLetter(ctx context.Context, in LetterInput) (*Letter, error) {
	in.Normalize()

	if errs := validation.Validate(in); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	resp, err := s.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: letterSystemPrompt(&in)},
			{Role: openai.ChatMessageRoleUser, Content: letterUserPrompt(&in)},
		},
		Temperature:      0.7,
		MaxTokens:        800,
		TopP:             0.9,
		FrequencyPenalty: 0.3,
		PresencePenalty:  0.3,
	})
	if err != nil {
		log.Error().Err(err).Msg("letter completion failed")

		return nil, ErrGenerationFailed
	}

	letter := ParseLetter(firstContent(resp), in.PropertyTitle)
	letter.Language = in.Language
	letter.GeneratedAt = s.now().UTC()
	letter.TokensUsed = resp.Usage.TotalTokens

	return letter, nil
}

// ParseLetter splits a model reply into subject and body. The first non
// empty line is the subject, without a leading "Subject:" or "Onderwerp:".
func ParseLetter(reply, propertyTitle string) *Letter {
	var lines []string

	for _, l := range strings.Split(reply, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	var subject, content string

	if len(lines) > 0 {
		subject = strings.TrimSpace(subjectPrefix.ReplaceAllString(lines[0], ""))
		content = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}

	if subject == "" {
		subject = "Application for " + propertyTitle
	}

	return &Letter{
		Content:   content,
		Subject:   subject,
		WordCount: len(strings.Fields(content)),
	}
}

func letterSystemPrompt(in *LetterInput) string {
	lang := "You write in clear, professional English."
	if in.Language == "nl" {
		lang = `You write in perfect Dutch (Nederlands). Use formal "u" when tone is professional/formal, "je" when friendly.`
	}

	return `You are an expert rental application letter writer in the Netherlands. Your goal is to help renters secure viewings by writing compelling, authentic application letters.

` + lang + `

TONE: ` + toneInstructions[in.Tone] + `

CRITICAL RULES:

Letters must be 250-350 words (not longer!)
Start with a subject line (Subject: ... or Onderwerp: ...)
Address landlord directly if name provided, otherwise "Dear Sir/Madam" or "Geachte heer/mevrouw"
Show genuine interest in the SPECIFIC property (mention details)
Highlight financial stability (income, employment)
Address any concerns proactively (pets, moving reason)
Express urgency and availability for viewing
End with clear call-to-action for viewing
NEVER lie or exaggerate - be authentic
NEVER use generic templates - personalize every letter

STRUCTURE:
- Subject line
- Greeting
- Introduction (who you are, why this property)
- Body (qualifications, lifestyle fit, financial stability)
- Closing (availability, call-to-action)
- Signature

Make the landlord WANT to meet this person.`
}

func money(v *float64) string {
	if v == nil {
		return "0"
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// letterUserPrompt lists the facts, one per line. Optional facts that are
// not set are left out.
func letterUserPrompt(in *LetterInput) string {
	lang := "English"
	if in.Language == "nl" {
		lang = "Dutch (Nederlands)"
	}

	opt := func(cond bool, format string, args ...any) string {
		if !cond {
			return ""
		}

		return fmt.Sprintf(format, args...)
	}

	pets := in.PetDescription
	if pets == "" {
		pets = "Yes"
	}

	age := 0
	if in.Age != nil {
		age = *in.Age
	}

	lines := []string{
		"Write an application letter for this rental property:",
		"PROPERTY:",
		"Title: " + in.PropertyTitle,
		"City: " + in.PropertyCity,
		"Type: " + in.PropertyType,
		"Monthly rent: €" + money(in.PropertyPrice),
		opt(in.LandlordName != "", "Landlord: %s", in.LandlordName),
		opt(in.LandlordType != "", "Landlord type: %s", in.LandlordType),
		"APPLICANT:",
		"Name: " + in.FullName,
		opt(age > 0, "Age: %d", age),
		"Occupation: " + in.Occupation,
		"Monthly income: €" + money(in.MonthlyIncome),
		"Currently living in: " + in.CurrentLocation,
		"Reason for moving: " + in.MoveReason,
		opt(len(in.Hobbies) > 0, "Hobbies: %s", strings.Join(in.Hobbies, ", ")),
		opt(in.HasPets, "Has pets: %s", pets),
		"REQUIREMENTS:",
		"Language: " + lang,
		"Tone: " + in.Tone,
		opt(in.CustomPrompt != "", "SPECIAL REQUEST: %s", in.CustomPrompt),
		fmt.Sprintf("Write a compelling letter that will get %s a viewing appointment.", in.FullName),
	}

	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}

	return strings.Join(out, "\n")
}
