package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authkit/internal/cache"
	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/oauth"
	"github.com/dropDatabas3/authkit/internal/security/password"
	"github.com/dropDatabas3/authkit/internal/security/token"
	"github.com/dropDatabas3/authkit/internal/store/memory"
)

// fakeMailer captura los envíos; fail simula un SMTP caído.
type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to, subject, html, text string
}

func (m *fakeMailer) Send(to, subject, html, text string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to, subject, html, text})
	return nil
}

// lastToken extrae el token del link del último mail enviado.
func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	text := m.sent[len(m.sent)-1].text
	i := strings.Index(text, "token=")
	require.GreaterOrEqual(t, i, 0)
	return text[i+len("token="):]
}

type fixture struct {
	svc    *Service
	repo   *memory.Store
	mailer *fakeMailer
	issuer *token.Issuer
	cache  cache.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.New()
	mailer := &fakeMailer{}
	issuer := token.NewIssuer("test-secret")
	c := cache.NewMemory("test", time.Minute)

	svc := NewService(Options{
		Repo:           repo,
		Issuer:         issuer,
		Hasher:         password.NewHasher(4),
		Mailer:         mailer,
		Cache:          c,
		Registry:       oauth.NewRegistry(oauth.Credentials{}, oauth.Credentials{}),
		FrontendOrigin: "http://localhost:3000",
		StateTTL:       time.Minute,
	})
	return &fixture{svc: svc, repo: repo, mailer: mailer, issuer: issuer, cache: c}
}

func TestSignUpCreatesUnverifiedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))

	u, err := f.repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, u.Verified())
	require.NotNil(t, u.Password)
	// Nunca plaintext.
	require.NotEqual(t, "secret1", *u.Password)

	require.Len(t, f.mailer.sent, 1)
	require.Equal(t, "a@x.com", f.mailer.sent[0].to)
	require.Contains(t, f.mailer.sent[0].text, "http://localhost:3000/auth/verify-email?token=")
}

func TestSignUpConflictOnAnyExistingRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))

	// La fila existente nunca se verificó, pero bloquea igual.
	err := f.svc.SignUp(ctx, "Ann2", "a@x.com", "other-pass")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUpMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.fail = true

	err := f.svc.SignUp(context.Background(), "Ann", "a@x.com", "secret1")
	require.ErrorIs(t, err, ErrMailDelivery)
}

func TestSignInInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Usuario inexistente.
	_, _, err := f.svc.SignIn(ctx, "nope@x.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	_, err = f.svc.VerifyEmail(ctx, f.mailer.lastToken(t))
	require.NoError(t, err)

	// Password incorrecto sobre cuenta verificada: mismo error, sin
	// distinguir la causa.
	_, _, err = f.svc.SignIn(ctx, "a@x.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInOAuthOnlyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := f.repo.Create(ctx, repository.CreateUserInput{
		Email:         "a@x.com",
		Name:          "Ann",
		EmailVerified: &now,
		MetaData:      map[string]string{"googleId": "g-1"},
	})
	require.NoError(t, err)

	// Cuenta sin password: el login con password no revela que existe.
	_, _, err = f.svc.SignIn(ctx, "a@x.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInUnverifiedResendsLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	require.Len(t, f.mailer.sent, 1)

	sess, resent, err := f.svc.SignIn(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.True(t, resent)
	require.Nil(t, sess)
	require.Len(t, f.mailer.sent, 2)

	// Da igual el password: mientras la cuenta no esté verificada la
	// respuesta es el reenvío, no un error de credenciales.
	sess, resent, err = f.svc.SignIn(ctx, "a@x.com", "wrong-pass")
	require.NoError(t, err)
	require.True(t, resent)
	require.Nil(t, sess)
	require.Len(t, f.mailer.sent, 3)
}

func TestVerifyEmailOpensFirstSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))

	sess, err := f.svc.VerifyEmail(ctx, f.mailer.lastToken(t))
	require.NoError(t, err)
	require.True(t, sess.User.Verified())
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)

	claims, err := f.issuer.Validate(sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, token.Str(claims, "id"))
	require.Equal(t, "a@x.com", token.Str(claims, "email"))
	require.NotEmpty(t, claims["emailVerified"])
}

func TestVerifyEmailTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	tk := f.mailer.lastToken(t)

	_, err := f.svc.VerifyEmail(ctx, tk)
	require.NoError(t, err)

	// El token sigue firmado y vigente, pero el estado del usuario lo bloquea.
	_, err = f.svc.VerifyEmail(ctx, tk)
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifyEmail(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Token válido de un email que no existe.
	tk, err := f.issuer.Issue(token.EmailVerification, map[string]any{"email": "ghost@x.com"})
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, tk)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignInAfterVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	_, err := f.svc.VerifyEmail(ctx, f.mailer.lastToken(t))
	require.NoError(t, err)

	sess, resent, err := f.svc.SignIn(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.False(t, resent)
	require.NotNil(t, sess)
	require.NotEmpty(t, sess.AccessToken)
}

func TestRefreshReissuesFromCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	first, err := f.svc.VerifyEmail(ctx, f.mailer.lastToken(t))
	require.NoError(t, err)

	// El perfil cambia después de emitido el access token.
	newName := "Ann Renamed"
	_, err = f.repo.Update(ctx, first.User.ID, repository.UpdateUserInput{Name: &newName})
	require.NoError(t, err)

	sess, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "Ann Renamed", sess.User.Name)

	// El snapshot del access token nuevo refleja el estado actual.
	claims, err := f.issuer.Validate(sess.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "Ann Renamed", token.Str(claims, "name"))
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	u, err := f.repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	f.issuer.RefreshTTL = -time.Minute
	expired, err := f.issuer.Issue(token.Refresh, map[string]any{"id": u.ID})
	require.NoError(t, err)
	f.issuer.RefreshTTL = 7 * 24 * time.Hour

	_, err = f.svc.Refresh(ctx, expired)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshDeletedUser(t *testing.T) {
	f := newFixture(t)

	raw, err := f.issuer.Issue(token.Refresh, map[string]any{"id": "no-such-user"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// ─── OAuth ───

// oauthFixture levanta un provider falso (token + userinfo) y apunta el
// registry ahí.
func oauthFixture(t *testing.T, profile map[string]any) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "provider-token"})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := newFixture(t)
	registry := oauth.NewRegistry(
		oauth.Credentials{ClientID: "g-id", ClientSecret: "g-secret", RedirectURL: "http://localhost/cb"},
		oauth.Credentials{},
	)
	p, ok := registry.Get("google")
	require.True(t, ok)
	p.TokenURL = srv.URL + "/token"
	p.UserInfoURL = srv.URL + "/userinfo"

	f.svc.registry = registry
	return f
}

func startAndState(t *testing.T, f *fixture) string {
	t.Helper()
	url, err := f.svc.Start(context.Background(), "google")
	require.NoError(t, err)
	i := strings.Index(url, "state=")
	require.GreaterOrEqual(t, i, 0)
	state := url[i+len("state="):]
	if j := strings.IndexByte(state, '&'); j >= 0 {
		state = state[:j]
	}
	return state
}

func TestOAuthStartUnknownProvider(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), "facebook")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestOAuthCallbackCreatesVerifiedUser(t *testing.T) {
	f := oauthFixture(t, map[string]any{
		"id": "g-123", "email": "new@x.com", "name": "Nina", "picture": "http://img/n.png",
	})
	ctx := context.Background()

	state := startAndState(t, f)
	sess, err := f.svc.Callback(ctx, "google", "the-code", state)
	require.NoError(t, err)

	// OAuth saltea PENDING_VERIFICATION: la cuenta nace verificada.
	require.True(t, sess.User.Verified())
	require.Equal(t, "g-123", sess.User.MetaData["googleId"])
	require.Equal(t, "Nina", sess.User.Name)
	require.Nil(t, sess.User.Password)
}

func TestOAuthCallbackLinksWithoutOverwriting(t *testing.T) {
	f := oauthFixture(t, map[string]any{
		"id": "g-123", "email": "a@x.com", "name": "Provider Name", "picture": "http://img/p.png",
	})
	ctx := context.Background()

	// Cuenta password existente, sin verificar, con nombre e imagen propios.
	require.NoError(t, f.svc.SignUp(ctx, "Ann", "a@x.com", "secret1"))
	u, err := f.repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	img := "http://img/mine.png"
	_, err = f.repo.Update(ctx, u.ID, repository.UpdateUserInput{Image: &img})
	require.NoError(t, err)

	state := startAndState(t, f)
	sess, err := f.svc.Callback(ctx, "google", "the-code", state)
	require.NoError(t, err)

	// Linkea y backfillea la verificación, pero los datos locales mandan.
	require.Equal(t, u.ID, sess.User.ID)
	require.Equal(t, "g-123", sess.User.MetaData["googleId"])
	require.True(t, sess.User.Verified())
	require.Equal(t, "Ann", sess.User.Name)
	require.Equal(t, "http://img/mine.png", sess.User.Image)
	// El password sobrevive al link.
	require.NotNil(t, sess.User.Password)
}

func TestOAuthCallbackStateSingleUse(t *testing.T) {
	f := oauthFixture(t, map[string]any{
		"id": "g-123", "email": "new@x.com", "name": "Nina",
	})
	ctx := context.Background()

	state := startAndState(t, f)
	_, err := f.svc.Callback(ctx, "google", "the-code", state)
	require.NoError(t, err)

	// Replay del mismo state.
	_, err = f.svc.Callback(ctx, "google", "the-code", state)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestOAuthCallbackBadState(t *testing.T) {
	f := oauthFixture(t, map[string]any{"id": "g-123", "email": "new@x.com"})

	_, err := f.svc.Callback(context.Background(), "google", "the-code", "forged-state")
	require.ErrorIs(t, err, ErrInvalidToken)
}
