package domain

type SessionState string

const (
	SessionAnonymous      SessionState = "anonymous"
	SessionAuthenticating SessionState = "authenticating"
	SessionAuthenticated  SessionState = "authenticated"
)

// Session is the client's authentication state. User is only set once the
// server accepted Token.
type Session struct {
	Token string
	User  *UserProfile
}

type UserProfile struct {
	FullName     string
	Email        string
	Username     string
	IsPrivileged bool
}

type RegisteredUser struct {
	ID       int64
	Username string
	Email    string
	FullName string
}

func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

func (s Session) HasToken() bool {
	return s.Token != ""
}

// DisplayName prefers the full name and falls back to email, then username.
func (p UserProfile) DisplayName() string {
	switch {
	case p.FullName != "":
		return p.FullName
	case p.Email != "":
		return p.Email
	default:
		return p.Username
	}
}
