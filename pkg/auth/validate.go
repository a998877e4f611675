package auth

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

var (
	ErrInvalidUsername = errors.New("username must be 2-32 printable characters without spaces or '#'")
	ErrInvalidPassword = errors.New("password must be 1-72 bytes")
)

var validate = newValidator()

type CredentialsRequest struct {
	Username string `validate:"required,min=2,max=32,username"`
	Password string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return isUsernameSafe(fl.Field().String())
	}); err != nil {
		panic("auth: register username validation: " + err.Error())
	}
	return v
}

// '#' is the room key separator, see domain.RoomSeparator
func isUsernameSafe(s string) bool {
	if strings.Contains(s, "#") {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// ValidateCredentials checks a register payload. Login payloads are not validated
// so that a malformed name simply fails as unknown credentials.
func ValidateCredentials(req CredentialsRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Username" {
					return ErrInvalidUsername
				}
			}
			return ErrInvalidPassword
		}
		return err
	}
	if len(req.Password) > MaxPasswordBytes {
		return ErrInvalidPassword
	}
	return nil
}
