package validation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"throttlelab/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

const (
	FieldSubjectAge = "subject_age"
	FieldSubjectSex = "subject_sex"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

type subjectInput struct {
	Age int    `validate:"gt=0"`
	Sex string `validate:"required,oneof=male female undisclosed"`
}

var validate = validator.New()

var messages = map[string]map[string]string{
	"Age": {
		"gt": "Subject age must be greater than 0",
	},
	"Sex": {
		"required": "Subject sex is required",
		"oneof":    "Subject sex must be one of male, female, undisclosed",
	},
}

var formFields = map[string]string{
	"Age": FieldSubjectAge,
	"Sex": FieldSubjectSex,
}

// ValidateSubjectForm checks the setup form before anything leaves the
// process. On failure the error is a FieldErrors with one entry per bad field.
func ValidateSubjectForm(form domain.SubjectForm) (domain.Subject, error) {
	fieldErrs := FieldErrors{}

	input := subjectInput{Sex: strings.TrimSpace(form.SubjectSex)}

	age, msg := parseAge(strings.TrimSpace(form.SubjectAge))
	ageParsed := msg == ""
	if ageParsed {
		input.Age = age
	} else {
		fieldErrs[FieldSubjectAge] = msg
	}

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.Subject{}, fmt.Errorf("validate subject: %w", err)
		}
		for _, fe := range verrs {
			if fe.Field() == "Age" && !ageParsed {
				continue
			}
			field := formFields[fe.Field()]
			if _, exists := fieldErrs[field]; exists {
				continue
			}
			msg, ok := messages[fe.Field()][fe.Tag()]
			if !ok {
				msg = fmt.Sprintf("%s is invalid", field)
			}
			fieldErrs[field] = msg
		}
	}

	if len(fieldErrs) > 0 {
		return domain.Subject{}, fieldErrs
	}

	return domain.Subject{Age: input.Age, Sex: domain.SubjectSex(input.Sex)}, nil
}

// parseAge accepts any whole number, written as an integer or as a float
// without a fractional part ("18", "18.0", "1e1").
func parseAge(raw string) (int, string) {
	if raw == "" {
		return 0, "Subject age is required"
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, ""
	}

	f, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil && !errors.Is(err, strconv.ErrRange), math.IsNaN(f), math.IsInf(f, 0):
		return 0, "Subject age must be a number"
	case f != math.Trunc(f):
		return 0, "Subject age must be a whole number"
	case f > math.MaxInt32 || f < math.MinInt32:
		return 0, "Subject age is out of range"
	}
	return int(f), ""
}
