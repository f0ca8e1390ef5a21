package auth

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/ukydev/transportease/internal/models"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,15}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the marketplace tags
// (phone, strongpassword, role, vehicletype) registered. Field names in
// errors are the json names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return ValidatePhone(fl.Field().String())
		})
		mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String())
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(models.Role(fl.Field().String()))
		})
		mustRegister(v, "vehicletype", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseVehicleType(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, strings.Join(e.Fields[name], "; "))
	}
	return strings.Join(parts, "; ")
}

// Add records msg against field.
func (e *ValidationError) Add(field string, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns e, or nil when no field was rejected.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks a request struct and converts validator failures into a
// *ValidationError.
func Validate(req any) error {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required", "required_without":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "strongpassword":
		return "Password must be at least 8 characters and include a number and a special character"
	case "eqfield":
		return "Passwords do not match"
	case "role":
		return "Role must be user or owner"
	case "vehicletype":
		return "Vehicle type must be one of " + vehicleTypeList()
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

func fieldLabel(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ValidatePhone accepts 10 to 15 digits, spaces, dashes or parentheses with
// an optional leading +.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

const passwordSpecials = "!@#$%^&*"

// ValidatePassword requires at least 8 characters drawn from ASCII letters,
// digits and !@#$%^&*, with at least one digit and one of the specials.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var digit, special bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		default:
			return false
		}
	}
	return digit && special
}

func vehicleTypeList() string {
	names := make([]string, 0, len(models.VehicleTypes))
	for _, t := range models.VehicleTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
