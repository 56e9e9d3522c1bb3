package validation

import (
	"errors"
	"testing"

	"throttlelab/internal/core/domain"
)

func TestValidateSubjectForm(t *testing.T) {
	tests := []struct {
		name       string
		form       domain.SubjectForm
		wantFields map[string]string
	}{
		{"adult male", domain.SubjectForm{SubjectAge: "18", SubjectSex: "male"}, nil},
		{"undisclosed", domain.SubjectForm{SubjectAge: " 42 ", SubjectSex: "undisclosed"}, nil},
		{"zero age", domain.SubjectForm{SubjectAge: "0", SubjectSex: "female"},
			map[string]string{FieldSubjectAge: "Subject age must be greater than 0"}},
		{"negative age", domain.SubjectForm{SubjectAge: "-3", SubjectSex: "female"},
			map[string]string{FieldSubjectAge: "Subject age must be greater than 0"}},
		{"non-numeric age", domain.SubjectForm{SubjectAge: "eighteen", SubjectSex: "male"},
			map[string]string{FieldSubjectAge: "Subject age must be a number"}},
		{"missing age", domain.SubjectForm{SubjectSex: "male"},
			map[string]string{FieldSubjectAge: "Subject age is required"}},
		{"whole float age", domain.SubjectForm{SubjectAge: "18.0", SubjectSex: "male"}, nil},
		{"exponent age", domain.SubjectForm{SubjectAge: "1e1", SubjectSex: "female"}, nil},
		{"fractional age", domain.SubjectForm{SubjectAge: "18.5", SubjectSex: "male"},
			map[string]string{FieldSubjectAge: "Subject age must be a whole number"}},
		{"negative float age", domain.SubjectForm{SubjectAge: "-2.0", SubjectSex: "male"},
			map[string]string{FieldSubjectAge: "Subject age must be greater than 0"}},
		{"infinite age", domain.SubjectForm{SubjectAge: "Inf", SubjectSex: "male"},
			map[string]string{FieldSubjectAge: "Subject age must be a number"}},
		{"missing sex", domain.SubjectForm{SubjectAge: "30"},
			map[string]string{FieldSubjectSex: "Subject sex is required"}},
		{"unknown sex", domain.SubjectForm{SubjectAge: "30", SubjectSex: "other"},
			map[string]string{FieldSubjectSex: "Subject sex must be one of male, female, undisclosed"}},
		{"both bad", domain.SubjectForm{SubjectAge: "x"},
			map[string]string{
				FieldSubjectAge: "Subject age must be a number",
				FieldSubjectSex: "Subject sex is required",
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := ValidateSubjectForm(tt.form)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("ValidateSubjectForm() unexpected error: %v", err)
				}
				if subject.Age <= 0 || subject.Sex == "" {
					t.Errorf("ValidateSubjectForm() returned incomplete subject %+v", subject)
				}
				return
			}

			var fieldErrs FieldErrors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("ValidateSubjectForm() error = %v, want FieldErrors", err)
			}
			if len(fieldErrs) != len(tt.wantFields) {
				t.Fatalf("got %d field errors (%v), want %d", len(fieldErrs), fieldErrs, len(tt.wantFields))
			}
			for field, msg := range tt.wantFields {
				if fieldErrs[field] != msg {
					t.Errorf("field %s: got %q, want %q", field, fieldErrs[field], msg)
				}
			}
		})
	}
}

func TestValidateSubjectForm_ParsesValues(t *testing.T) {
	subject, err := ValidateSubjectForm(domain.SubjectForm{SubjectAge: "18", SubjectSex: "male"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject.Age != 18 || subject.Sex != domain.SexMale {
		t.Errorf("got %+v, want {18 male}", subject)
	}
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	err := FieldErrors{
		FieldSubjectSex: "b",
		FieldSubjectAge: "a",
	}
	want := "subject_age: a; subject_sex: b"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantMsg string
	}{
		{"18", 18, ""},
		{"+7", 7, ""},
		{"18.0", 18, ""},
		{"1e1", 10, ""},
		{"2.5e1", 25, ""},
		{"18.25", 0, "Subject age must be a whole number"},
		{"NaN", 0, "Subject age must be a number"},
		{"1e400", 0, "Subject age must be a number"},
		{"1e12", 0, "Subject age is out of range"},
		{"", 0, "Subject age is required"},
	}

	for _, tt := range tests {
		got, msg := parseAge(tt.raw)
		if got != tt.want || msg != tt.wantMsg {
			t.Errorf("parseAge(%q) = %d, %q; want %d, %q", tt.raw, got, msg, tt.want, tt.wantMsg)
		}
	}
}
