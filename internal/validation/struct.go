package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rentfusion/rentfusion/internal/db/models"
)

// ErrorResponse describes one failed field.
type ErrorResponse struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value any    `json:"value,omitempty"`
}

var (
	validate     *validator.Validate //nolint:gochecknoglobals
	validateOnce sync.Once           //nolint:gochecknoglobals
)

// New returns the shared validator with the custom tags registered:
// dutchphone, strongpassword and tier.
func New() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names, the client never sees go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0] //nolint:mnd
			if name == "-" || name == "" {
				return fld.Name
			}

			return name
		})

		_ = v.RegisterValidation("dutchphone", func(fl validator.FieldLevel) bool {
			return IsDutchPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return CheckPassword(fl.Field().String()).IsValid
		})
		_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
			return models.SubscriptionTier(fl.Field().String()).Valid()
		})

		validate = v
	})

	return validate
}

// Validate checks data and flattens the failures, nil when data is valid.
func Validate(data any) []ErrorResponse {
	err := New().Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorResponse{{Field: "", Tag: err.Error()}}
	}

	out := make([]ErrorResponse, 0, len(verrs))
	for _, fe := range verrs {
		e := ErrorResponse{Field: fe.Field(), Tag: fe.Tag(), Value: fe.Value()}
		if strings.Contains(strings.ToLower(fe.Field()), "password") {
			e.Value = nil
		}

		out = append(out, e)
	}

	return out
}
