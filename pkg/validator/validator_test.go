package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignup_Valid(t *testing.T) {
	t.Parallel()

	errs := ValidateSignup("Andrew", "andrew@example.com", "MyPass777!", 27)
	assert.False(t, errs.HasErrors(), "expected no errors, got %v", errs)
}

func TestValidateSignup_MissingFields(t *testing.T) {
	t.Parallel()

	errs := ValidateSignup("   ", "", "", 0)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		email string
		ok    bool
	}{
		{"andrew@example.com", true},
		{"not-an-email", false},
		{"missing@domain", true}, // net/mail accepts bare domains
		{"two@at@signs.com", false},
	}
	for _, tc := range cases {
		errs := make(ValidationErrors)
		ValidateEmail(tc.email, errs)
		assert.Equal(t, tc.ok, !errs.HasErrors(), "email %q", tc.email)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		password string
		ok       bool
	}{
		{"MyPass777!", true},
		{"short", false},
		{"password123", false},
		{"PASSWORD123", false},
		{"MyPassword!", false}, // contains "password" mid-string
		{"exactly7", true},
	}
	for _, tc := range cases {
		errs := make(ValidationErrors)
		ValidatePassword(tc.password, errs)
		assert.Equal(t, tc.ok, !errs.HasErrors(), "password %q", tc.password)
	}
}

func TestValidateAge(t *testing.T) {
	t.Parallel()

	errs := make(ValidationErrors)
	ValidateAge(-1, errs)
	assert.True(t, errs.HasErrors())

	errs = make(ValidationErrors)
	ValidateAge(0, errs)
	assert.False(t, errs.HasErrors())
}
