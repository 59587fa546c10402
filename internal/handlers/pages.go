package handlers

import (
	"net/http"
)

// deleteAccountPage is the public data-deletion instructions page required
// by the app store listing. Served without authentication.
const deleteAccountPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Delete Your Account - MODE</title>
  <style>
    body { font-family: -apple-system, sans-serif; max-width: 640px; margin: 40px auto; padding: 0 20px; color: #1a1a1a; }
    h1 { font-size: 1.6em; }
    ol li { margin-bottom: 8px; }
    .note { background: #f5f5f5; padding: 12px 16px; border-radius: 8px; font-size: 0.95em; }
  </style>
</head>
<body>
  <h1>Delete Your MODE Account</h1>
  <p>You can permanently delete your account and all associated data directly from the app:</p>
  <ol>
    <li>Open the MODE app and sign in.</li>
    <li>Go to <strong>Settings</strong> &rarr; <strong>Account</strong>.</li>
    <li>Tap <strong>Delete Account</strong> and confirm.</li>
  </ol>
  <p class="note">Deletion removes your profile, all coach conversations, draft and
  activated plans, and any custom coaches you created. This cannot be undone.
  For security you may be asked to sign in again before the deletion runs.</p>
  <p>If you can no longer access the app, email
  <a href="mailto:support@modecoach.app">support@modecoach.app</a> from your
  account address and we will process the deletion within 30 days.</p>
</body>
</html>`

// PagesHandler serves the few public HTML pages the service hosts.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func (h *PagesHandler) Root(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("page") {
	case "delete_account":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(deleteAccountPage))
	default:
		writeJSON(w, http.StatusOK, map[string]string{"service": "modecoach-backend", "status": "ok"})
	}
}
