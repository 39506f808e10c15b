package validators

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"clouddrive/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("item_name", validateItemName)
	validate.RegisterValidation("not_blank", validateNotBlank)
}

var ErrInvalidObjectID = errors.New("invalid object ID format")

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into the map carried by the error envelope.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "request", Tag: "invalid", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "not_blank":
		if err.Field() == "Name" {
			return utils.ErrMsgNameRequired
		}
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "item_name":
		return "Name must not contain path separators"
	case "url":
		return "Invalid URL"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

// validateObjectID also accepts the root aliases understood by ParseObjectID.
func validateObjectID(fl validator.FieldLevel) bool {
	_, err := ParseObjectID(fl.Field().String())
	return err == nil
}

// validateItemName accepts names that are usable as a single path segment.
func validateItemName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" {
		return true
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return false
	}
	return utf8.RuneCountInString(name) <= utils.MaxNameLength
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ParseObjectID parses a path or form value. Empty input is not an error
// and yields nil, which the services read as the root folder.
func ParseObjectID(value string) (*primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "null" || value == utils.RootFolderKey {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return nil, ErrInvalidObjectID
	}
	return &id, nil
}
