package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength     = 150
	maxImageURLLength = 300
	maxCaptionLength  = 500
	maxCommentLength  = 1000
	maxPromptLength   = 500
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs validator tags over a request payload and flattens the
// first failure into a message suitable for the error response.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.New("invalid request")
	}
	field := strings.ToLower(fieldErrs[0].Field())
	switch fieldErrs[0].Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	case "min":
		return fmt.Errorf("%s must be at least %s characters", field, fieldErrs[0].Param())
	case "max":
		return fmt.Errorf("%s must be %s characters or fewer", field, fieldErrs[0].Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

func normalizeText(text string) string {
	return strings.TrimSpace(text)
}

// validateText enforces the non-empty-after-trimming rule shared by drawing
// names, image references, comments and prompts.
func validateText(field, text string, maxLength int) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if len(trimmed) > maxLength {
		return "", fmt.Errorf("%s must be %d characters or fewer", field, maxLength)
	}
	return trimmed, nil
}
