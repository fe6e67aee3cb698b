package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitiveVariable(t *testing.T) {
	cases := map[string]bool{
		"api_token":    true,
		"api_url":      false,
		"auth_enabled": false,
		"db_password":  true,
		"signing_key":  true,
	}
	for name, want := range cases {
		assert.Equal(t, want, IsSensitiveVariable(name), "IsSensitiveVariable(%q)", name)
	}
}

func TestRedactValue(t *testing.T) {
	assert.Equal(t, "🔒 sh***", RedactValue("short"))
	assert.Equal(t, "🔒 ***", RedactValue("ab"))
}

func TestRedactVariable(t *testing.T) {
	assert.Equal(t, "https://example.com", RedactVariable("api_url", "https://example.com"))
	assert.Equal(t, "🔒 ab***", RedactVariable("api_token", "abcdefgh"))
}
