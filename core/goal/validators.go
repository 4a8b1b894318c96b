package goal

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

var (
	goalStatusTag  = "goalstatus"
	goalStatusText = "status must be one of not_started, active, completed"
)

// InitValidators registers goal validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(goalStatusTag, goalStatusValidation)
	core.RegisterCustomTranslation(validate, translator, goalStatusTag, goalStatusText)
}

func goalStatusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
