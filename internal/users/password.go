package users

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// PasswordProblems lists every rule the password breaks; empty means it is acceptable.
func PasswordProblems(password string) []string {
	var problems []string
	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, "at least 8 characters")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			special = true
		}
	}
	if !upper {
		problems = append(problems, "an uppercase letter")
	}
	if !lower {
		problems = append(problems, "a lowercase letter")
	}
	if !digit {
		problems = append(problems, "a digit")
	}
	if !special {
		problems = append(problems, "a special character")
	}
	return problems
}

func weakPasswordMessage(problems []string) string {
	return "password must contain " + strings.Join(problems, ", ")
}
