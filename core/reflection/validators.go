package reflection

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/istudy/dashboard/core"
)

var (
	contentTag  = "reflectioncontent"
	contentText = "at least one reflection field must be filled in"
)

// InitValidators registers reflection validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newReflectionStructLevelValidation, NewReflection{})
	core.RegisterCustomTranslation(validate, translator, contentTag, contentText)
}

func newReflectionStructLevelValidation(sl validator.StructLevel) {
	nr := sl.Current().Interface().(NewReflection)
	if !nr.HasContent() {
		sl.ReportError(nr.Progress, "content", "Progress", contentTag, "")
	}
}
