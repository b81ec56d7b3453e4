package domain

// Session is the record of the currently authenticated user, if any.
// A single instance is held process-wide by the client session store and
// replaced wholesale on every auth transition.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Active reports whether the session represents a signed-in user.
func (s Session) Active() bool {
	return s.AccessToken != "" && s.UserID != ""
}
