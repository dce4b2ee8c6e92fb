package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/calmcp/internal/logging"
)

func TestCallbackHandlerWithCode(t *testing.T) {
	handler := CallbackHandler(logging.NewStderrLogger(false))

	req := httptest.NewRequest("GET", "/oauth2callback?code=4%2F0Axyz&state=state", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "4/0Axyz")
	assert.Contains(t, rec.Body.String(), "setGoogleOAuthTokens")
}

func TestCallbackHandlerMissingCode(t *testing.T) {
	handler := CallbackHandler(logging.NewStderrLogger(false))

	req := httptest.NewRequest("GET", "/oauth2callback", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization failed")
}

func TestCallbackHandlerProviderError(t *testing.T) {
	handler := CallbackHandler(logging.NewStderrLogger(false))

	req := httptest.NewRequest("GET", "/oauth2callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_denied")
}

func TestCallbackHandlerEscapesCode(t *testing.T) {
	handler := CallbackHandler(logging.NewStderrLogger(false))

	req := httptest.NewRequest("GET", "/oauth2callback?code=%3Cscript%3E", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}
