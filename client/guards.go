package client

// GuardDecision is the outcome of evaluating a route guard against the
// current session state.
type GuardDecision int

const (
	// ShowLoading renders the loading indicator and nothing else; no
	// redirect decision is made yet.
	ShowLoading GuardDecision = iota
	// Allow renders the protected content.
	Allow
	// RedirectLogin routes the user to the login view.
	RedirectLogin
	// RedirectDashboard routes an authenticated non-admin away from an
	// admin-only view.
	RedirectDashboard
)

func (d GuardDecision) String() string {
	switch d {
	case ShowLoading:
		return "show-loading"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	default:
		return "unknown"
	}
}

// GuardAuthenticated gates a route on an established session. While the
// bootstrap is still resolving only the loading state is rendered, so a
// reload never flashes a redirect.
func GuardAuthenticated(session *SessionController) GuardDecision {
	if session.IsLoading() {
		return ShowLoading
	}
	if session.IsAuthenticated() {
		return Allow
	}
	return RedirectLogin
}

// GuardAdmin additionally requires the ADMIN perfil. An authenticated
// non-admin is sent to the dashboard, everyone else to login.
func GuardAdmin(session *SessionController) GuardDecision {
	if session.IsLoading() {
		return ShowLoading
	}
	if !session.IsAuthenticated() {
		return RedirectLogin
	}
	if !session.CurrentUser().IsAdmin() {
		return RedirectDashboard
	}
	return Allow
}
