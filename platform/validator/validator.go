// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	leadStatuses = map[string]bool{
		"new": true, "assigned": true, "contacted": true,
		"qualified": true, "converted": true, "rejected": true,
	}
	leadPriorities = map[string]bool{
		"low": true, "medium": true, "high": true, "urgent": true,
	}
	// Slugs are lowercase alphanumeric with single hyphens, no leading or
	// trailing hyphen.
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the console's custom rules
// (lead_status, lead_priority, tenant_slug) pre-registered. The same rules
// are registered on Gin's binding engine so `binding:` tags can use them.
func New() *Validator {
	v := validator.New()
	registerCustomRules(v)

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomRules(engine)
	}

	return &Validator{v: v}
}

func registerCustomRules(v *validator.Validate) {
	// Registration only fails for an empty tag, which cannot happen here.
	_ = v.RegisterValidation("lead_status", func(fl validator.FieldLevel) bool {
		return leadStatuses[fl.Field().String()]
	})
	_ = v.RegisterValidation("lead_priority", func(fl validator.FieldLevel) bool {
		return leadPriorities[fl.Field().String()]
	})
	_ = v.RegisterValidation("tenant_slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
