package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/istudy/dashboard/core/dates"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	targetDateTag  = "targetdate"
	targetDateText = "date cannot be in the past"

	objectIDTag   = "objectid"
	objectIDText  = "invalid identifier"
	objectIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// NewTranslator returns the english translator used for validation error messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(targetDateTag, targetDateValidation)
	RegisterCustomTranslation(validate, translator, targetDateTag, targetDateText)

	_ = validate.RegisterValidation(objectIDTag, objectIDValidation)
	RegisterCustomTranslation(validate, translator, objectIDTag, objectIDText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String:
		return strings.TrimSpace(fl.Field().String()) != ""
	case reflect.Ptr:
		if fl.Field().IsNil() {
			return true // optional; use `required` to force presence
		}
		if s, ok := fl.Field().Elem().Interface().(string); ok {
			return strings.TrimSpace(s) != ""
		}
	}
	return false
}

// targetDateValidation rejects dates before today in the program time zone. Zero dates pass.
func targetDateValidation(fl validator.FieldLevel) bool {
	var t time.Time
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return true
		}
		t = *v
	default:
		return false
	}
	return dates.IsValidTargetDate(t, NowFunc())
}

func objectIDValidation(fl validator.FieldLevel) bool {
	return objectIDRegex.MatchString(fl.Field().String())
}
