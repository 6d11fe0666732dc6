package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// msisdnPattern matches Kenyan mobile numbers in international form without
// the plus sign, which is the format the mobile-money gateway requires
// (2547XXXXXXXX or 2541XXXXXXXX).
var msisdnPattern = regexp.MustCompile(`^254(7|1)\d{8}$`)

// SetupValidator configures the binding validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("msisdn", validateMsisdn)
}

func validateMsisdn(fl validator.FieldLevel) bool {
	return msisdnPattern.MatchString(fl.Field().String())
}
