package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type subjectValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newValidator() (*subjectValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &subjectValidator{
		validate:   validate,
		translator: trans,
	}, nil
}

func (v *subjectValidator) check(subject Subject) error {
	err := v.validate.Struct(subject)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", strings.TrimPrefix(e.Namespace(), "Subject."), e.Translate(v.translator)))
	}
	return fmt.Errorf("invalid subject: %s", strings.Join(messages, ", "))
}
