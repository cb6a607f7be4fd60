package httpclient

// Auth carries request credentials. Token takes precedence over Username/Password.
type Auth struct {
	Username string
	Password string
	Token    string
}

// BasicAuth creates HTTP basic credentials.
func BasicAuth(username, password string) *Auth {
	return &Auth{Username: username, Password: password}
}

// BearerAuth creates bearer token credentials.
func BearerAuth(token string) *Auth {
	return &Auth{Token: token}
}

// IsZero reports whether a carries no credentials.
func (a *Auth) IsZero() bool {
	return a == nil || (a.Token == "" && a.Username == "" && a.Password == "")
}
