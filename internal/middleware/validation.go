package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hms-api/internal/model"
)

// RegisterValidators installs the domain enum validators on gin's
// binding engine and makes validation errors report JSON field names.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	must(v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("appointment_type", func(fl validator.FieldLevel) bool {
		return model.AppointmentType(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return model.PaymentMethod(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("medication_status", func(fl validator.FieldLevel) bool {
		return model.MedicationStatus(fl.Field().String()).Valid()
	}))

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
