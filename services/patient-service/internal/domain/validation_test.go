package domain_test

import (
	"errors"
	"testing"

	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
)

func strPtr(v string) *string { return &v }

func TestValidateCreate(t *testing.T) {
	t.Parallel()

	valid := domain.CreateInput{
		Name:             "  Jane Doe ",
		Email:            " JANE@X.COM ",
		Address:          " 1 Rd ",
		DateOfBirth:      "1990-01-01",
		RegistrationDate: "2024-01-01",
	}
	got, err := domain.ValidateCreate(valid)
	if err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	if got.Name != "Jane Doe" || got.Email != "jane@x.com" || got.Address != "1 Rd" {
		t.Fatalf("fields not normalized: %+v", got)
	}
	if got.DateOfBirth.Format(domain.DateLayout) != "1990-01-01" {
		t.Fatalf("unexpected date of birth %v", got.DateOfBirth)
	}

	cases := []struct {
		name   string
		mutate func(*domain.CreateInput)
		want   error
	}{
		{name: "blank name", mutate: func(in *domain.CreateInput) { in.Name = "  " }, want: domain.ErrInvalidInput},
		{name: "bad email", mutate: func(in *domain.CreateInput) { in.Email = "not-an-email" }, want: domain.ErrInvalidInput},
		{name: "display name email", mutate: func(in *domain.CreateInput) { in.Email = "Jane <jane@x.com>" }, want: domain.ErrInvalidInput},
		{name: "missing address", mutate: func(in *domain.CreateInput) { in.Address = "" }, want: domain.ErrInvalidInput},
		{name: "missing dob", mutate: func(in *domain.CreateInput) { in.DateOfBirth = "" }, want: domain.ErrInvalidInput},
		{name: "bad dob", mutate: func(in *domain.CreateInput) { in.DateOfBirth = "13-13-2020" }, want: domain.ErrBadFormat},
		{name: "missing registration", mutate: func(in *domain.CreateInput) { in.RegistrationDate = " " }, want: domain.ErrInvalidInput},
		{name: "bad registration", mutate: func(in *domain.CreateInput) { in.RegistrationDate = "2024-02-30" }, want: domain.ErrBadFormat},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := valid
			tc.mutate(&in)
			if _, err := domain.ValidateCreate(in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	t.Parallel()

	patch, err := domain.ValidateUpdate(domain.UpdateInput{Address: strPtr("  2 Ave ")})
	if err != nil {
		t.Fatalf("expected partial update to validate, got %v", err)
	}
	if patch.Name != nil || patch.Email != nil || patch.DateOfBirth != nil {
		t.Fatalf("absent fields must stay nil: %+v", patch)
	}
	if *patch.Address != "2 Ave" {
		t.Fatalf("address not trimmed: %q", *patch.Address)
	}

	if _, err := domain.ValidateUpdate(domain.UpdateInput{DateOfBirth: strPtr("13-13-2020")}); !errors.Is(err, domain.ErrBadFormat) {
		t.Fatalf("expected bad format, got %v", err)
	}
	if _, err := domain.ValidateUpdate(domain.UpdateInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected empty update to be rejected, got %v", err)
	}
	if _, err := domain.ValidateUpdate(domain.UpdateInput{Name: strPtr("")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected blank name to be rejected, got %v", err)
	}
}

func TestPatchEmailChangeIgnoresCase(t *testing.T) {
	t.Parallel()

	current := domain.Patient{Email: "jane@x.com", Name: "Jane"}
	same := domain.PatientPatch{Email: strPtr("jane@x.com")}
	if same.EmailChangeFor(domain.Patient{Email: "JANE@x.com"}) {
		t.Fatalf("case-only difference must not count as an email change")
	}
	moved := domain.PatientPatch{Email: strPtr("jd@x.com"), Name: strPtr("Jane D")}
	if !moved.EmailChangeFor(current) {
		t.Fatalf("expected email change")
	}
	next := moved.Apply(current)
	if next.Email != "jd@x.com" || next.Name != "Jane D" {
		t.Fatalf("unexpected patched record %+v", next)
	}
	if current.Email != "jane@x.com" {
		t.Fatalf("apply must not mutate the original")
	}
}
