package account

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/redmonkez12/task-manager-api/internal/apperror"
)

// profile is the validated shape of a user's editable fields
type profile struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=7,nopassword"`
	Age      int    `validate:"min=0"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("nopassword", func(fl validator.FieldLevel) bool {
		return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register nopassword validation: %v", err))
	}
	return v
}

// normalize trims every string field and lower-cases the email
func (p *profile) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Password = strings.TrimSpace(p.Password)
}

// validateProfile checks p, skipping the password when it is unchanged
func validateProfile(v *validator.Validate, p *profile, withPassword bool) error {
	var err error
	if withPassword {
		err = v.Struct(p)
	} else {
		err = v.StructExcept(p, "Password")
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) *apperror.Error {
	switch fe.Field() {
	case "Name":
		return ErrNameRequired
	case "Email":
		if fe.Tag() == "required" {
			return ErrEmailRequired
		}
		return ErrInvalidEmail
	case "Password":
		switch fe.Tag() {
		case "required":
			return ErrPasswordRequired
		case "min":
			return ErrPasswordTooShort
		default:
			return ErrPasswordContains
		}
	case "Age":
		return ErrInvalidAge
	default:
		return ErrInvalidFieldValue
	}
}
