package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex     = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	currencyRegex  = regexp.MustCompile(`^[A-Z]{3}$`)
	productIDRegex = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

	xssPatterns = map[string]*regexp.Regexp{
		"Script tag found":             regexp.MustCompile(`(?i)<script.*>`),
		"JavaScript protocol found":    regexp.MustCompile(`(?i)javascript:`),
		"Event handler found":          regexp.MustCompile(`(?i)on(load|error|click)=`),
		"document.cookie access found": regexp.MustCompile(`(?i)document\.cookie`),
		"HTML tag found":               regexp.MustCompile(`<[^>]*>`),
	}
)

// ValidateXSS checks for common XSS attack patterns
func ValidateXSS(input string) (bool, string) {
	for message, pattern := range xssPatterns {
		if pattern.MatchString(input) {
			return false, "XSS detected: " + message
		}
	}
	return true, ""
}

// ValidateEmail checks if the email is valid and safe
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "is required"
	}
	if valid, msg := ValidateXSS(email); !valid {
		return false, msg
	}
	if !emailRegex.MatchString(email) {
		return false, "is not a valid email address"
	}
	return true, ""
}

// ValidatePhone checks an optional phone number after stripping spaces and dashes
func ValidatePhone(phone string) (bool, string) {
	if phone == "" {
		return true, "" // Phone is optional
	}
	digits := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phoneRegex.MatchString(digits) {
		return false, "is not a valid phone number"
	}
	return true, ""
}

// ValidateName checks a customer name is present and safe
func ValidateName(name string) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "is required"
	}
	if valid, msg := ValidateXSS(name); !valid {
		return false, msg
	}
	if len(name) > 255 {
		return false, "must be at most 255 characters"
	}
	return true, ""
}

// ValidateCurrency checks a three letter upper-case ISO 4217 code
func ValidateCurrency(currency string) (bool, string) {
	if !currencyRegex.MatchString(currency) {
		return false, "must be a three letter ISO code"
	}
	return true, ""
}

// ValidateProductID checks a product reference copied onto an order line
func ValidateProductID(id string) (bool, string) {
	if id == "" {
		return false, "is required"
	}
	if !productIDRegex.MatchString(id) {
		return false, "may only contain letters, digits and . _ : -"
	}
	return true, ""
}
