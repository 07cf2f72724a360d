package ai

import (
	"errors"
	"strings"

	"github.com/rentfusion/rentfusion/internal/validation"
)

var (
	// ErrGenerationFailed is returned when the completion call for a letter fails.
	ErrGenerationFailed = errors.New("failed to generate letter, please try again")
	// ErrAnalysisFailed is returned when the completion call for a contract fails or returns no JSON.
	ErrAnalysisFailed = errors.New("failed to analyze contract")
	// ErrNoContractText is returned for an empty contract.
	ErrNoContractText = errors.New("no contract text found")
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("openai api key is not configured")
)

// ValidationError lists the invalid fields of a request.
type ValidationError struct {
	Fields []validation.ErrorResponse
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field+" ("+f.Tag+")")
	}

	return "invalid input: " + strings.Join(names, ", ")
}
