package shared

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// SessionTokens exposes the API token pair held in a session.
type SessionTokens struct {
	sess *Session
}

// NewSessionTokens wraps sess. A nil session behaves as signed out.
func NewSessionTokens(sess *Session) *SessionTokens {
	return &SessionTokens{sess: sess}
}

func (t *SessionTokens) AccessToken() string {
	if t.sess == nil {
		return ""
	}
	return t.sess.Get(accessTokenKey)
}

func (t *SessionTokens) RefreshToken() string {
	if t.sess == nil {
		return ""
	}
	return t.sess.Get(refreshTokenKey)
}

func (t *SessionTokens) SetAccessToken(token string) {
	if t.sess == nil {
		return
	}
	t.sess.Set(accessTokenKey, token)
}

// SetTokens stores a freshly issued pair.
func (t *SessionTokens) SetTokens(access, refresh string) {
	if t.sess == nil {
		return
	}
	t.sess.Set(accessTokenKey, access)
	t.sess.Set(refreshTokenKey, refresh)
}

// Clear drops both tokens and the signed-in user.
func (t *SessionTokens) Clear() {
	if t.sess == nil {
		return
	}
	t.sess.ClearUser()
}
