package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/rentfusion/rentfusion/internal/config"
)

type fakeCompleter struct {
	reply string
	err   error
	last  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(
	_ context.Context, req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
		Usage:   openai.Usage{TotalTokens: 420},
	}, nil
}

func ptr[T any](v T) *T { return &v }

func validInput() LetterInput {
	return LetterInput{
		FullName:        "Anna de Vries",
		Occupation:      "Software engineer",
		MonthlyIncome:   ptr(5200.0),
		CurrentLocation: "Utrecht",
		MoveReason:      "New job",
		PropertyTitle:   "Bright apartment",
		PropertyCity:    "Amsterdam",
		PropertyType:    "apartment",
		PropertyPrice:   ptr(1750.5),
	}
}

func TestGenerateLetter(t *testing.T) {
	fake := &fakeCompleter{reply: "Subject: Application for Bright apartment\n\nDear Sir/Madam,\n\nI would love to visit.\n"}
	svc := NewService(fake, &config.OpenAI{})

	l, err := svc.GenerateLetter(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Application for Bright apartment", l.Subject)
	assert.Equal(t, "Dear Sir/Madam,\nI would love to visit.", l.Content)
	assert.Equal(t, 7, l.WordCount)
	assert.Equal(t, "en", l.Language)
	assert.Equal(t, 420, l.TokensUsed)

	assert.Equal(t, defaultModel, fake.last.Model)
	assert.InDelta(t, 0.7, fake.last.Temperature, 0.001)
	assert.Equal(t, 800, fake.last.MaxTokens)

	user := fake.last.Messages[1].Content
	assert.Contains(t, user, "Monthly rent: €1750.5")
	assert.Contains(t, user, "Monthly income: €5200")
	assert.NotContains(t, user, "Landlord:")
	assert.NotContains(t, user, "Has pets")
	assert.NotContains(t, user, "\n\n")
	assert.Contains(t, fake.last.Messages[0].Content, "TONE: Use a warm, personable tone")
}

func TestGenerateLetterDutch(t *testing.T) {
	fake := &fakeCompleter{reply: "Onderwerp: Huurwoning\nGeachte heer/mevrouw,"}
	svc := NewService(fake, &config.OpenAI{Model: "gpt-4o"})

	in := validInput()
	in.Language = "nl"
	in.Tone = "formal"
	in.HasPets = true
	in.LandlordName = "Jansen"

	l, err := svc.GenerateLetter(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Huurwoning", l.Subject)
	assert.Equal(t, "nl", l.Language)
	assert.Equal(t, "gpt-4o", fake.last.Model)

	user := fake.last.Messages[1].Content
	assert.Contains(t, user, "Has pets: Yes")
	assert.Contains(t, user, "Landlord: Jansen")
	assert.Contains(t, user, "Language: Dutch (Nederlands)")
	assert.Contains(t, fake.last.Messages[0].Content, `Use formal "u"`)
}

func TestGenerateLetterValidation(t *testing.T) {
	svc := NewService(&fakeCompleter{}, &config.OpenAI{})

	in := validInput()
	in.FullName = "A"
	in.PropertyType = "castle"
	in.MonthlyIncome = nil

	_, err := svc.GenerateLetter(context.Background(), in)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Tag
	}

	assert.Equal(t, "min", fields["fullName"])
	assert.Equal(t, "oneof", fields["propertyType"])
	assert.Equal(t, "required", fields["monthlyIncome"])
}

func TestGenerateLetterFailure(t *testing.T) {
	svc := NewService(&fakeCompleter{err: errors.New("503")}, &config.OpenAI{})

	_, err := svc.GenerateLetter(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrGenerationFailed)

	_, err = New(&config.OpenAI{}).GenerateLetter(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestParseLetter(t *testing.T) {
	tests := []struct {
		name, reply, subject, content string
		words                         int
	}{
		{"prefix", "SUBJECT: Hello\nBody text", "Hello", "Body text", 2},
		{"no prefix", "Hello there\nA B C", "Hello there", "A B C", 3},
		{"empty", "", "Application for Flat", "", 0},
		{"only prefix", "Subject:\nBody", "Application for Flat", "Body", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ParseLetter(tt.reply, "Flat")
			assert.Equal(t, tt.subject, l.Subject)
			assert.Equal(t, tt.content, l.Content)
			assert.Equal(t, tt.words, l.WordCount)
		})
	}
}

const analysisReply = `{
  "redFlags": [
    {"title": "Deposit too high", "severity": "high"},
    {"title": "Unclear notice", "severity": "medium"},
    {"title": "Typo", "severity": "low"}
  ],
  "yellowFlags": [{"title": "Service costs"}],
  "positiveTerms": [{"title": "Indefinite", "description": "Security"}],
  "keyTerms": {"monthlyRent": 1300, "deposit": 5200},
  "recommendations": ["Negotiate deposit"]
}`

func TestAnalyzeContract(t *testing.T) {
	fake := &fakeCompleter{reply: analysisReply}
	svc := NewService(fake, &config.OpenAI{})
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	a, err := svc.AnalyzeContract(context.Background(), strings.Repeat("é", 12000))
	require.NoError(t, err)

	// 100 - 15 - 8 - 3 - 3 + 2
	assert.Equal(t, 73, a.OverallScore)
	assert.Equal(t, RiskMedium, a.RiskLevel)
	assert.Equal(t, 92, a.Confidence)
	assert.Equal(t, "Analysis complete.", a.Summary)
	assert.Len(t, a.RedFlags, 3)
	assert.InDelta(t, 5200, a.KeyTerms["deposit"], 0.1)
	assert.Equal(t, []string{"Negotiate deposit"}, a.Recommendations)
	assert.Equal(t, "nl", a.Metadata.Language)
	assert.Equal(t, 420, a.Metadata.TokensUsed)

	require.NotNil(t, fake.last.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, fake.last.ResponseFormat.Type)

	prompt := strings.TrimPrefix(fake.last.Messages[1].Content, "Analyze this Dutch rental contract and return JSON:\n\n")
	assert.Equal(t, 10000, len([]rune(prompt)))
}

func TestAnalyzeContractErrors(t *testing.T) {
	_, err := NewService(&fakeCompleter{}, &config.OpenAI{}).AnalyzeContract(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoContractText)

	_, err = NewService(&fakeCompleter{reply: "not json"}, &config.OpenAI{}).AnalyzeContract(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAnalysisFailed)

	_, err = NewService(&fakeCompleter{err: errors.New("down")}, &config.OpenAI{}).AnalyzeContract(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestScoreClampAndRisk(t *testing.T) {
	many := `{"redFlags":[` + strings.TrimSuffix(strings.Repeat(`{"severity":"high"},`, 8), ",") + `]}`
	assert.Equal(t, 0, ParseAnalysis(gjson.Parse(many)).OverallScore)

	good := `{"positiveTerms":[{},{},{}]}`
	a := ParseAnalysis(gjson.Parse(good))
	assert.Equal(t, 100, a.OverallScore)
	assert.Equal(t, RiskLow, a.RiskLevel)
	assert.Empty(t, a.RedFlags)
	assert.NotNil(t, a.KeyTerms)

	assert.Equal(t, RiskMedium, RiskLevel(60))
	assert.Equal(t, RiskHigh, RiskLevel(59))
	assert.Equal(t, RiskLow, RiskLevel(80))
}

func TestHashDocument(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashDocument(""))
	assert.Len(t, HashDocument("contract"), 64)
}
