package utils

import (
	"regexp"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
}

var instance *Validator
var once sync.Once
var configuration *truemail.Configuration

func GetValidator() *Validator {
	once.Do(func() {
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "registrar@campus-server.tech",
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
		}

		registerCustomValidators(instance.Validate)
	})

	return instance
}

// SanitizeData strips markup from every string field of the payload.
func (v *Validator) SanitizeData(obj interface{}) error {
	policy := bluemonday.StrictPolicy()
	return sanitizeStruct(policy, obj)
}

func validateEmail(email string) bool {
	return truemail.IsValid(email, configuration)
}

func registerCustomValidators(v *validator.Validate) {
	err := v.RegisterValidation("login_code_validation", loginCodeValidation)
	if err != nil {
		return
	}

	err = v.RegisterValidation("password_validation", passwordValidation)
	if err != nil {
		return
	}
}

// loginCodeValidation accepts the generated code shapes: an upper or
// lower cased alphanumeric code like P4711 or YBOUCHAK777. Case is
// normalized later, so both are fine here.
func loginCodeValidation(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	pattern := `^[a-zA-Z0-9]+$`
	match, err := regexp.MatchString(pattern, code)
	if err != nil {
		return false
	}

	return match
}

func passwordValidation(fl validator.FieldLevel) bool {
	var upperLetter, lowerLetter, number, specialChar bool

	value := fl.Field().String()
	for _, r := range value {
		if r > unicode.MaxASCII {
			return false
		}

		switch {
		case unicode.IsUpper(r):
			upperLetter = true
		case unicode.IsLower(r):
			lowerLetter = true
		case unicode.IsNumber(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			specialChar = true
		}
	}

	return upperLetter && lowerLetter && number && specialChar
}
