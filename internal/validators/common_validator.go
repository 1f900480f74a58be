package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"tricy/internal/models"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.SetTagName("binding")
	Register(validate)
}

var registerGinOnce sync.Once

// RegisterWithGin installs the custom tags on gin's binding validator so that
// ShouldBindJSON and ShouldBindUri understand them.
func RegisterWithGin() {
	registerGinOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register adds the custom tags to v and makes field errors report JSON
// names.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("user_role", validateUserRole)
	v.RegisterValidation("payment_mode", validatePaymentMode)
	v.RegisterValidation("booking_status", validateBookingStatus)
	v.RegisterValidation("availability_status", validateAvailabilityStatus)
	v.RegisterValidation("iso_date", validateISODate)
}

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

// Details flattens the errors into the field → message map used by the
// response envelope.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	return FromError(validate.Struct(s))
}

// FromError converts a validator error, including the one returned by gin
// binding, into ValidationErrors. Other errors such as malformed JSON become
// a single entry under "body".
func FromError(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{
			Field:   "body",
			Tag:     "parse",
			Message: err.Error(),
		}}
	}

	validationErrors := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: getErrorMessage(fe),
		})
	}
	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "latitude":
		return "Latitude must be between -90 and 90"
	case "longitude":
		return "Longitude must be between -180 and 180"
	case "phone":
		return "Invalid phone number format"
	case "user_role":
		return "Role must be one of passenger, driver, admin"
	case "payment_mode":
		return "Payment mode must be cash or online"
	case "booking_status":
		return "Status must be one of requested, accepted, ongoing, completed, cancelled"
	case "availability_status":
		return "Availability must be one of offline, online, busy"
	case "iso_date":
		return "Date must use the YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, err.Param())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	return utils.IsValidPhone(fl.Field().String())
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).IsValid()
}

func validatePaymentMode(fl validator.FieldLevel) bool {
	_, ok := models.ParsePaymentMode(fl.Field().String())
	return ok
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	return models.BookingStatus(fl.Field().String()).IsValid()
}

func validateAvailabilityStatus(fl validator.FieldLevel) bool {
	switch models.AvailabilityStatus(fl.Field().String()) {
	case models.AvailabilityOffline, models.AvailabilityOnline, models.AvailabilityBusy:
		return true
	}
	return false
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

func jsonFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "uri", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}
