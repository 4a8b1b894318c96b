package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/goal"
	"github.com/istudy/dashboard/core/reflection"
	"github.com/istudy/dashboard/core/user"
)

// NewValidator returns a validator with every custom validation and its english translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	goal.InitValidators(validate, translator)
	reflection.InitValidators(validate, translator)

	return validate, translator
}
