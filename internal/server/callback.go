package server

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/teemow/calmcp/internal/logging"
)

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>Google Calendar Authorization</title></head>
<body>
<h1>Authorization successful</h1>
<p>Copy the authorization code below and pass it to the
<code>setGoogleOAuthTokens</code> tool to finish connecting your calendar.</p>
<pre>%s</pre>
<p>You can close this window.</p>
</body>
</html>`

const callbackErrorPage = `<!DOCTYPE html>
<html>
<head><title>Google Calendar Authorization</title></head>
<body>
<h1>Authorization failed</h1>
<p>%s</p>
<p>Close this window and restart the authorization flow.</p>
</body>
</html>`

// CallbackHandler serves the OAuth redirect endpoint. It never exchanges
// the code itself; the exchange happens through the setGoogleOAuthTokens
// tool so both transports share one code path.
func CallbackHandler(logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if errName := r.URL.Query().Get("error"); errName != "" {
			logger.Warn("oauth callback returned error",
				logging.Operation("oauth_callback"),
				slog.String("oauth_error", errName))
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackErrorPage, "Google reported: "+html.EscapeString(errName))
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			logger.Warn("oauth callback missing code",
				logging.Operation("oauth_callback"))
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackErrorPage, "The callback request did not include an authorization code.")
			return
		}

		logger.Info("oauth callback received authorization code",
			logging.Operation("oauth_callback"),
			slog.String("code", logging.SanitizeToken(code)))
		fmt.Fprintf(w, callbackPage, html.EscapeString(code))
	}
}
