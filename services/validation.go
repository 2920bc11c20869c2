package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

// fieldOrder fixes the order messages are reported in, whatever order the rules ran.
var fieldOrder = []string{"title", "name", "platform", "description", "status", "due_date", "platforms", "days_of_week"}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return models.Platform(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(validatePostDescription, postInput{})
	return v
}

// validatePostDescription enforces the platform's description limit, counted in characters.
func validatePostDescription(sl validator.StructLevel) {
	p := sl.Current().Interface().(postInput)
	if p.Description == nil {
		return
	}
	limit := p.Platform.DescriptionLimit()
	if utf8.RuneCountInString(*p.Description) > limit {
		sl.ReportError(p.Description, "description", "Description", "desclen", fmt.Sprint(limit))
	}
}

// validationError runs v over input and turns failures into a single ValidationError.
func validationError(v *validator.Validate, input interface{}) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.NewInternalErrorWithCause("validate input", err)
	}

	byField := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := byField[fe.Field()]; !seen {
			byField[fe.Field()] = messageFor(fe)
		}
	}
	messages := make([]string, 0, len(byField))
	for _, field := range fieldOrder {
		if msg, ok := byField[field]; ok {
			messages = append(messages, msg)
			delete(byField, field)
		}
	}
	for _, fe := range fieldErrs {
		if msg, ok := byField[fe.Field()]; ok {
			delete(byField, fe.Field())
			if !containsString(messages, msg) {
				messages = append(messages, msg)
			}
		}
	}
	return errs.NewValidationError(messages)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "min":
		return "at least one " + strings.TrimSuffix(fe.Field(), "s") + " is required"
	case "platform":
		return "invalid platform"
	case "status":
		return "invalid status"
	case "desclen":
		return fmt.Sprintf("description too long (max %s)", fe.Param())
	}
	return "invalid " + fe.Field()
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
