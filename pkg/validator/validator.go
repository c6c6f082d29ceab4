package validator

import (
	"net/mail"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// ValidateSignup checks every field of a registration payload.
func ValidateSignup(name, email, password string, age int) ValidationErrors {
	errs := make(ValidationErrors)
	ValidateName(name, errs)
	ValidateEmail(email, errs)
	ValidatePassword(password, errs)
	ValidateAge(age, errs)
	return errs
}

func ValidateName(name string, errs ValidationErrors) {
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "Name is required")
	}
}

func ValidateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.Add("email", "Invalid email address")
	}
}

// ValidatePassword enforces the password rules: at least 7 characters and
// not containing the word "password" in any casing.
func ValidatePassword(password string, errs ValidationErrors) {
	if password == "" {
		errs.Add("password", "Password is required")
		return
	}
	if len(password) < 7 {
		errs.Add("password", "Password must be at least 7 characters")
		return
	}
	if strings.Contains(strings.ToLower(password), "password") {
		errs.Add("password", `Password cannot contain "password"`)
	}
}

func ValidateAge(age int, errs ValidationErrors) {
	if age < 0 {
		errs.Add("age", "Age must be a positive number")
	}
}

func ValidateTaskDescription(description string, errs ValidationErrors) {
	if strings.TrimSpace(description) == "" {
		errs.Add("description", "Description is required")
	}
}
