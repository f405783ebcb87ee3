package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxEmailLength is the longest address accepted (RFC 5321 path limit).
	MaxEmailLength    = 254
	MinPasswordLength = 8
	MinNameLength     = 2
	MaxNameLength     = 50

	// PasswordSymbols is the set of which at least one must appear.
	PasswordSymbols = "@$!%*?&"
)

var (
	emailValidator = validator.New()
	phonePattern   = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)
)

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

// TrimSpace trims string values and leaves everything else alone.
func TrimSpace(value any) any {
	if s, ok := asString(value); ok {
		return strings.TrimSpace(s)
	}
	return value
}

// IsEmail reports whether value is a syntactically valid email address.
func IsEmail(value any) bool {
	s, ok := asString(value)
	if !ok || s == "" || len(s) > MaxEmailLength {
		return false
	}
	return emailValidator.Var(s, "required,email") == nil
}

// IsStrongPassword requires MinPasswordLength characters including an ASCII
// lower case letter, upper case letter and digit, and one of PasswordSymbols.
// Other characters are allowed but count toward none of the classes.
func IsStrongPassword(value any) bool {
	s, ok := asString(value)
	if !ok || utf8.RuneCountInString(s) < MinPasswordLength {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// IsName accepts MinNameLength to MaxNameLength letters and whitespace.
func IsName(value any) bool {
	s, ok := asString(value)
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(s)
	if n < MinNameLength || n > MaxNameLength {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func IsPhone(value any) bool {
	s, ok := asString(value)
	return ok && phonePattern.MatchString(s)
}

// IsPresent rejects nil and blank strings.
func IsPresent(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := asString(value); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// NormalizeEmail lower-cases an address and folds provider-specific aliases:
// gmail drops dots and +tags (googlemail.com becomes gmail.com), outlook,
// hotmail, live, icloud and me drop +tags, yahoo drops -tags.
func NormalizeEmail(value any) any {
	s, ok := asString(value)
	if !ok {
		return value
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return value
	}
	local := strings.ToLower(s[:at])
	domain := strings.ToLower(s[at+1:])

	switch domain {
	case "gmail.com", "googlemail.com":
		local = cutTag(local, "+")
		local = strings.ReplaceAll(local, ".", "")
		domain = "gmail.com"
	case "outlook.com", "hotmail.com", "live.com", "icloud.com", "me.com":
		local = cutTag(local, "+")
	case "yahoo.com", "ymail.com", "rocketmail.com":
		local = cutTag(local, "-")
	}
	if local == "" {
		return value
	}
	return local + "@" + domain
}

func cutTag(local, sep string) string {
	before, _, _ := strings.Cut(local, sep)
	return before
}

// Email requires a valid address in field and normalizes it.
func Email(field string) Rule {
	return Rule{
		Field:   field,
		Message: "Please provide a valid email address",
		Steps: []Step{
			Normalize(TrimSpace),
			Check(IsEmail),
			Normalize(NormalizeEmail),
		},
	}
}

func Password(field string) Rule {
	return Rule{
		Field:     field,
		Message:   "Password must be at least 8 characters and contain uppercase, lowercase, number and special character",
		Sensitive: true,
		Steps:     []Step{Check(IsStrongPassword)},
	}
}

// Name trims the value before checking it.
func Name(field string) Rule {
	return Rule{
		Field:   field,
		Message: "Name must be 2-50 characters and contain only letters and spaces",
		Steps: []Step{
			Normalize(TrimSpace),
			Check(IsName),
		},
	}
}

// Phone is optional; when present it must look like a phone number.
func Phone(field string) Rule {
	return Rule{
		Field:    field,
		Message:  "Please provide a valid phone number",
		Optional: true,
		Steps: []Step{
			Normalize(TrimSpace),
			Check(IsPhone),
		},
	}
}

func Required(field string) Rule {
	return Rule{
		Field:   field,
		Message: field + " is required",
		Steps:   []Step{Check(IsPresent)},
	}
}
