package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// configRule is a validation tag with the message reported for it.
// A nil check only overrides the message of a built-in tag.
type configRule struct {
	tag     string
	check   validator.Func
	message string
}

var classNamePattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

var configRules = []configRule{
	{tag: "executable", check: isExecutable, message: "{0} must be an existing executable file"},
	{tag: "class_name", check: isClassName, message: "{0} must be a single CSS class name"},
	{tag: "hostname_port", message: "{0} must be a host:port address"},
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(configKey)
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("enTranslations.RegisterDefaultTranslations > %w", err)
	}
	for _, rule := range configRules {
		if err := registerRule(validate, trans, rule); err != nil {
			return nil, nil, err
		}
	}
	return validate, trans, nil
}

// configKey names fields the way they are written in the config file.
func configKey(field reflect.StructField) string {
	key, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
	if key == "-" {
		return ""
	}
	return key
}

func registerRule(validate *validator.Validate, trans ut.Translator, rule configRule) error {
	if rule.check != nil {
		if err := validate.RegisterValidation(rule.tag, rule.check); err != nil {
			return fmt.Errorf("validate.RegisterValidation(%s) > %w", rule.tag, err)
		}
	}
	register := func(trans ut.Translator) error {
		return trans.Add(rule.tag, rule.message, true)
	}
	translate := func(trans ut.Translator, fieldErr validator.FieldError) string {
		message, _ := trans.T(rule.tag, strings.TrimPrefix(fieldErr.Namespace(), "Config."))
		return message
	}
	if err := validate.RegisterTranslation(rule.tag, trans, register, translate); err != nil {
		return fmt.Errorf("validate.RegisterTranslation(%s) > %w", rule.tag, err)
	}
	return nil
}

func isExecutable(fl validator.FieldLevel) bool {
	info, err := os.Stat(fl.Field().String())
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// isClassName accepts one class token. The game classes are matched inside CSS
// attribute selectors, so whitespace or quotes would break the injected script.
func isClassName(fl validator.FieldLevel) bool {
	return classNamePattern.MatchString(fl.Field().String())
}
