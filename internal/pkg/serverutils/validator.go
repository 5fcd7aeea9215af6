package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation on a bound DTO and turns
// failures into a 400 with field-level messages.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	msgs := []string{}
	if ok := validateErrorsAs(err, &invalid); ok {
		for _, f := range invalid {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", f.Field(), f.Tag()))
		}
	} else {
		msgs = append(msgs, err.Error())
	}

	return fiber.NewError(fiber.StatusBadRequest, strings.Join(msgs, "; "))
}

func validateErrorsAs(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
