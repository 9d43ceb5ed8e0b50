package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct tag validation and reports failures as
// scoring issues so every 422 body has the same shape.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	issues := make([]scoring.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		reason := "failed " + fe.Tag()
		if fe.Param() != "" {
			reason = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		issues = append(issues, scoring.Issue{Column: fe.Field(), Reason: reason})
	}
	return &scoring.ValidationError{Issues: issues}
}

type assessmentExportParams struct {
	Format string `json:"format" validate:"oneof=pdf csv"`
}

type batchExportParams struct {
	Format string `json:"format" validate:"oneof=csv xlsx"`
}
