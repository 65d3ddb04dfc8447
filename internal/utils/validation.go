package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"carecircle-server/internal/triage"
)

var registerOnce sync.Once

// RegisterValidators installs the domain validations on gin's validator and
// reports field errors by their JSON name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		configure(v)
	})
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// "120/80", empty allowed
	_ = v.RegisterValidation("bloodpressure", func(fl validator.FieldLevel) bool {
		_, _, err := triage.ParseBloodPressure(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		_, err := triage.ParseTier(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return validClock(fl.Field().String())
	})
}

func validClock(s string) bool {
	var h, m int
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return false
	}
	return h >= 0 && h < 24 && m >= 0 && m < 60
}

// Validate performs validation on a struct using the binding tags.
func Validate(s interface{}) error {
	RegisterValidators()
	return binding.Validator.ValidateStruct(s)
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fieldMessage(e))
	}
	return strings.Join(msgs, ", ")
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "email":
		return field + " must be a valid email"
	case "bloodpressure":
		return field + ` must look like "120/80"`
	case "tier":
		return field + " must be a severity (mild, moderate, severe) or status (normal, monitor, consult)"
	case "hhmm":
		return field + " must be a time of day (HH:MM)"
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, e.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, e.Tag())
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			BadRequest(c, "Validation failed: "+FormatValidationError(err))
			return false
		}
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}
