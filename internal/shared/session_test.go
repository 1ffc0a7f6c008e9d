package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/shared"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "panel_session", "secret", time.Hour, false), mr
}

// roundTrip commits sess and loads it again through the issued cookie.
func roundTrip(t *testing.T, sm *shared.SessionManager, sess *shared.Session) *shared.Session {
	t.Helper()
	ctx := context.Background()
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	return loaded
}

func TestSessionTokensPersist(t *testing.T) {
	sm, mr := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	sess.SetUser("7", "admin")
	shared.NewSessionTokens(sess).SetTokens("acc", "ref")
	loaded := roundTrip(t, sm, sess)

	assert.True(t, loaded.Authenticated())
	assert.Equal(t, "admin", loaded.Username())
	assert.Equal(t, "7", loaded.User())
	tokens := shared.NewSessionTokens(loaded)
	assert.Equal(t, "acc", tokens.AccessToken())
	assert.Equal(t, "ref", tokens.RefreshToken())
	assert.Len(t, mr.Keys(), 1)
}

func TestSessionTokensClear(t *testing.T) {
	sm, _ := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	tokens := shared.NewSessionTokens(sess)
	tokens.SetTokens("acc", "ref")
	sess.SetUser("7", "admin")
	tokens.SetAccessToken("acc-2")
	assert.Equal(t, "acc-2", tokens.AccessToken())

	tokens.Clear()
	loaded := roundTrip(t, sm, sess)
	assert.False(t, loaded.Authenticated())
	assert.Empty(t, loaded.Username())
	assert.Empty(t, shared.NewSessionTokens(loaded).RefreshToken())
}

func TestNilSessionTokens(t *testing.T) {
	tokens := shared.NewSessionTokens(nil)
	tokens.SetTokens("a", "r")
	tokens.Clear()
	assert.Empty(t, tokens.AccessToken())

	var sess *shared.Session
	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.PopFlash())
}

func TestFlashesSurviveOneRedirect(t *testing.T) {
	sm, _ := newManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Cliente creado exitosamente"})
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashWarning, Message: "segundo"})

	loaded := roundTrip(t, sm, sess)
	first := loaded.PopFlash()
	require.NotNil(t, first)
	assert.Equal(t, shared.FlashSuccess, first.Kind)
	assert.Equal(t, "Cliente creado exitosamente", first.Message)

	loaded = roundTrip(t, sm, loaded)
	second := loaded.PopFlash()
	require.NotNil(t, second)
	assert.Equal(t, "segundo", second.Message)
	assert.Nil(t, loaded.PopFlash())
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()
	csrf := shared.NewCSRFManager("csrf-secret")
	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, "anything"), shared.ErrCSRFTokenMissing)

	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, ""), shared.ErrCSRFTokenMissing)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, token+"x"), shared.ErrCSRFTokenMismatch)

	time.Sleep(time.Millisecond)
	rotated := csrf.Rotate(sess)
	assert.NotEqual(t, token, rotated)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, token), shared.ErrCSRFTokenMismatch)
	assert.NoError(t, csrf.VerifyToken(ctx, sess, rotated))
}

func TestTokenFromRequestPrefersHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/pedidos/lines/preview", nil)
	req.Header.Set(shared.CSRFHeader, "from-header")
	assert.Equal(t, "from-header", shared.TokenFromRequest(req))
}
