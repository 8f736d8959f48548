package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 6
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UsernameRegex validates account username format
	UsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateUsername validates account username
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return fmt.Errorf("username is too long (max 50 characters)")
	}
	if !UsernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidatePassword validates password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateDisplayName validates the name a participant joins under.
// Display names are free-form text chosen at join time; uniqueness is not enforced.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name is required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return fmt.Errorf("display name is too long (max 50 characters)")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("display name contains invalid characters")
	}
	return nil
}

// ValidateMessageText validates a chat message body
func ValidateMessageText(text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	if utf8.RuneCountInString(text) > maxLen {
		return fmt.Errorf("message text is too long (max %d characters)", maxLen)
	}
	return nil
}

// ValidatePollQuestion validates a poll question
func ValidatePollQuestion(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("poll question is required")
	}
	if utf8.RuneCountInString(question) > 200 {
		return fmt.Errorf("poll question is too long (max 200 characters)")
	}
	return nil
}

// ValidatePollOptions validates poll option texts. Between 2 and 6 non-empty
// options are required.
func ValidatePollOptions(options []string) error {
	var nonEmpty int
	for _, opt := range options {
		if strings.TrimSpace(opt) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < MinPollOptions {
		return fmt.Errorf("poll requires at least %d non-empty options", MinPollOptions)
	}
	if nonEmpty > MaxPollOptions {
		return fmt.Errorf("poll allows at most %d options", MaxPollOptions)
	}
	for _, opt := range options {
		if utf8.RuneCountInString(opt) > 100 {
			return fmt.Errorf("poll option is too long (max 100 characters)")
		}
	}
	return nil
}

// ValidateMimeType checks the declared content type against a whitelist.
func ValidateMimeType(mimeType string, allowed []string) error {
	if mimeType == "" {
		return fmt.Errorf("content type is required")
	}
	for _, t := range allowed {
		if strings.EqualFold(t, mimeType) {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", mimeType)
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}
