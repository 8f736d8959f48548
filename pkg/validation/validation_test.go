package validation_test

import (
	"strings"
	"testing"

	"huddle/pkg/validation"

	"github.com/stretchr/testify/assert"
)

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, validation.ValidateDisplayName("alice"))
	assert.NoError(t, validation.ValidateDisplayName("Alice Smith 🎧"))
	assert.Error(t, validation.ValidateDisplayName(""))
	assert.Error(t, validation.ValidateDisplayName("   "))
	assert.Error(t, validation.ValidateDisplayName(strings.Repeat("a", 51)))
	assert.NoError(t, validation.ValidateDisplayName(strings.Repeat("a", 50)))
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, validation.ValidateMessageText("hello", 100))
	assert.Error(t, validation.ValidateMessageText("", 100))
	assert.Error(t, validation.ValidateMessageText("  \t ", 100))
	assert.Error(t, validation.ValidateMessageText(strings.Repeat("x", 101), 100))
}

func TestValidatePollOptions(t *testing.T) {
	assert.NoError(t, validation.ValidatePollOptions([]string{"a", "b"}))
	assert.NoError(t, validation.ValidatePollOptions([]string{"a", "b", "c", "d", "e", "f"}))
	assert.Error(t, validation.ValidatePollOptions([]string{"a"}))
	assert.Error(t, validation.ValidatePollOptions([]string{"a", "b", "c", "d", "e", "f", "g"}))
	// Blank options do not count toward the minimum.
	assert.Error(t, validation.ValidatePollOptions([]string{"a", "   "}))
	assert.Error(t, validation.ValidatePollOptions([]string{"a", strings.Repeat("x", 101)}))
}

func TestValidatePollQuestion(t *testing.T) {
	assert.NoError(t, validation.ValidatePollQuestion("lunch?"))
	assert.Error(t, validation.ValidatePollQuestion(" "))
	assert.Error(t, validation.ValidatePollQuestion(strings.Repeat("q", 201)))
}

func TestValidateMimeType(t *testing.T) {
	allowed := []string{"image/png", "audio/webm"}

	assert.NoError(t, validation.ValidateMimeType("image/png", allowed))
	assert.NoError(t, validation.ValidateMimeType("IMAGE/PNG", allowed))
	assert.Error(t, validation.ValidateMimeType("application/x-sh", allowed))
	assert.Error(t, validation.ValidateMimeType("", allowed))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, validation.ValidateUsername("alice_01"))
	assert.Error(t, validation.ValidateUsername("al"))
	assert.Error(t, validation.ValidateUsername("bad name"))
	assert.Error(t, validation.ValidateUsername(strings.Repeat("a", 51)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validation.ValidateEmail("alice@example.com"))
	assert.Error(t, validation.ValidateEmail("not-an-email"))
	assert.Error(t, validation.ValidateEmail(""))
}
