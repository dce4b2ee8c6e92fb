package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeUser(t *testing.T) {
	hash := AnonymizeUser("u1")

	assert.NotEmpty(t, hash)
	assert.NotContains(t, hash, "u1@")
	assert.Contains(t, hash, "user:")

	// Same input must produce the same hash for log correlation
	assert.Equal(t, hash, AnonymizeUser("u1"))
	assert.NotEqual(t, hash, AnonymizeUser("u2"))
}

func TestAnonymizeUserEmpty(t *testing.T) {
	assert.Equal(t, "", AnonymizeUser(""))
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))

	masked := SanitizeToken("ya29.super-secret-access-token")
	assert.NotContains(t, masked, "secret")
	assert.Equal(t, "[token:30 chars]", masked)
}

func TestErrNil(t *testing.T) {
	attr := Err(nil)
	// Empty group attrs are omitted by slog
	assert.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Empty(t, attr.Value.Group())
}

func TestErrNonNil(t *testing.T) {
	attr := Err(assert.AnError)
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, assert.AnError.Error(), attr.Value.String())
}

func TestWithOperation(t *testing.T) {
	logger := NewStderrLogger(false)
	opLogger := WithOperation(logger, "save_tokens")
	assert.NotNil(t, opLogger)
	assert.NotSame(t, logger, opLogger)
}
