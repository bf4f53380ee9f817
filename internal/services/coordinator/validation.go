package coordinator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JericoFX/advance-manager/internal/entities"
)

var citizenIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var validate = validator.New()

func init() {
	validate.RegisterValidation("citizenid", func(fl validator.FieldLevel) bool {
		return citizenIDPattern.MatchString(fl.Field().String())
	})
}

// validateStruct checks request tags and reports every failed field
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", entities.ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", entities.ErrInvalidInput, strings.Join(fields, ", "))
}
