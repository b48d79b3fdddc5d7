package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"todoitems/internal/core/model/response"
	"todoitems/internal/core/port"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var _ port.Validator = (*Validator)(nil)

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so errors match the request body.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

		if name == "-" {
			return ""
		}

		if name == "" {
			return field.Name
		}

		return name
	})

	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	v := &Validator{validate: validate, translator: translator}
	v.addCustomTranslations()

	return v
}

func (v *Validator) addCustomTranslations() {
	v.validate.RegisterTranslation("required", v.translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})

	v.validate.RegisterTranslation("max", v.translator, func(ut ut.Translator) error {
		return ut.Add("max", "{0} must be at most {1} characters", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("max", getFieldName(fe.Field()), fe.Param())
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"title":       "Title",
		"isCompleted": "Completion status",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

func (v *Validator) FormatValidationErrors(err error) []response.ValidationError {
	var validationErrors validator.ValidationErrors

	if !errors.As(err, &validationErrors) {
		return nil
	}

	result := make([]response.ValidationError, 0, len(validationErrors))

	for _, fieldError := range validationErrors {
		result = append(result, response.ValidationError{
			Field:   fieldError.Field(),
			Message: fieldError.Translate(v.translator),
		})
	}

	return result
}
