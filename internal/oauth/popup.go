package oauth

import (
	"html/template"
	"net/http"
)

// PopupUser is the account summary handed to the frontend.
type PopupUser struct {
	ID     uint64  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// PopupResponse is the session handed to the frontend on success.
type PopupResponse struct {
	Token string    `json:"token"`
	User  PopupUser `json:"user"`
}

// PopupMessage is posted to the opener window.
type PopupMessage struct {
	Type     string         `json:"type"`
	Success  bool           `json:"success"`
	Response *PopupResponse `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"`
}

const popupMessageType = "oauth_response"

// SuccessMessage wraps a completed login.
func SuccessMessage(resp PopupResponse) PopupMessage {
	return PopupMessage{Type: popupMessageType, Success: true, Response: &resp}
}

// FailureMessage reports a failed login without detail.
func FailureMessage() PopupMessage {
	return PopupMessage{Type: popupMessageType, Success: false, Error: "Authentication failed"}
}

// popupContentSecurityPolicy allows only the inline script below.
const popupContentSecurityPolicy = "default-src 'none'; script-src 'unsafe-inline';"

// Values interpolated into the script are JSON-encoded by html/template.
var popupTemplate = template.Must(template.New("popup").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Authentication</title></head>
<body>
<script>
(function () {
  var message = {{.Message}};
  if (window.opener) {
    window.opener.postMessage(message, {{.Origin}});
  }
  window.close();
})();
</script>
</body>
</html>
`))

// RenderPopup writes the page that posts msg to the opener, restricted to
// origin, and closes itself.
func RenderPopup(w http.ResponseWriter, msg PopupMessage, origin string) error {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Security-Policy", popupContentSecurityPolicy)
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	return popupTemplate.Execute(w, struct {
		Message PopupMessage
		Origin  string
	}{msg, origin})
}
