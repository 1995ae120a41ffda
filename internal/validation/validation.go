package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// Register adds the custom rules to v and reports fields by their json names
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("slug", validateSlug); err != nil {
		return fmt.Errorf("register slug rule: %w", err)
	}
	if err := v.RegisterValidation("username", validateUsername); err != nil {
		return fmt.Errorf("register username rule: %w", err)
	}
	return nil
}

// RegisterWithGin installs the rules on the validator used by gin's ShouldBind*
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

// FormatValidationError formats validation errors into a map of field to message
// This prevents leaking internal struct names and provides cleaner error messages
func FormatValidationError(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	errs := make(map[string]interface{})

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["non_field_errors"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required."
		case "email":
			errs[field] = "Enter a valid email address."
		case "slug":
			errs[field] = "Enter a valid slug of letters, numbers, underscores or hyphens."
		case "username":
			errs[field] = "Enter a valid username of letters, digits and @/./+/-/_ only."
		case "hexcolor":
			errs[field] = "Enter a valid hex color."
		case "max":
			errs[field] = fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
		case "min", "gte":
			errs[field] = fmt.Sprintf("Ensure this value is at least %s.", e.Param())
		default:
			errs[field] = "Invalid value."
		}
	}

	return errs
}

func validateSlug(fl validator.FieldLevel) bool {
	slug := fl.Field().String()
	// Allow empty if not required (handled by 'required' tag if needed)
	if slug == "" {
		return true
	}
	return slugPattern.MatchString(slug)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	if username == "" {
		return true
	}
	return usernamePattern.MatchString(username)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}
