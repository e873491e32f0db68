package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/auth-service/internal/auth"
	api "github.com/taskhive/auth-service/internal/http"
	"github.com/taskhive/auth-service/internal/oauth"
	"github.com/taskhive/auth-service/internal/queue"
	"github.com/taskhive/auth-service/internal/repo/mem"
	"github.com/taskhive/auth-service/internal/verification"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string // bodies, in order
}

func (m *recordingMailer) Send(_ context.Context, _, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

func (m *recordingMailer) lastBody(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var bracketRe = regexp.MustCompile(`\[([0-9A-Za-z]+)\]`)

type testEnv struct {
	router *gin.Engine
	store  *mem.Store
	mailer *recordingMailer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	store := mem.NewStore()
	mailer := &recordingMailer{}
	svc := auth.NewService(store, store, store, verification.NewStore(), mailer, 4, 3*time.Minute)
	reg := oauth.NewRegistry(oauth.NewStateSigner("test-secret"))
	h := api.NewHandler(svc, store, []api.Pinger{store}, reg, queue.NewNoop(),
		nil, "jwt-test-secret", 15*time.Minute, 14, 0)
	return &testEnv{router: api.NewRouter(h), store: store, mailer: mailer}
}

func (e *testEnv) post(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signup drives the verification-code flow and registers an account.
func (e *testEnv) signup(t *testing.T, name, email, loginID, password string) map[string]any {
	t.Helper()
	w := e.post(t, "/api/auth/verification-code", gin.H{"email": email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	m := bracketRe.FindStringSubmatch(e.mailer.lastBody(t))
	require.Len(t, m, 2)

	w = e.post(t, "/api/auth/signup", gin.H{
		"display_name": name,
		"email":        email,
		"login_id":     loginID,
		"password":     password,
		"code":         m[1],
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

func TestSignupFlow(t *testing.T) {
	e := newEnv(t)

	resp := e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")
	require.Equal(t, "nova", resp["display_name"])
	require.Len(t, resp["short_code"], 4)
	require.Equal(t, resp["display_name"].(string)+"#"+resp["short_code"].(string), resp["tag"])
}

func TestSignupBadPayload(t *testing.T) {
	e := newEnv(t)

	w := e.post(t, "/api/auth/signup", gin.H{"display_name": "nova"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.post(t, "/api/auth/signup", gin.H{
		"display_name": "nova", "email": "not-an-email",
		"login_id": "validuser01", "password": "Str0ngPass!", "code": "0000",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.post(t, "/api/auth/signup", gin.H{
		"display_name": "nova", "email": "a@x.com",
		"login_id": "validuser01", "password": "short", "code": "0000",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupWrongCode(t *testing.T) {
	e := newEnv(t)

	w := e.post(t, "/api/auth/verification-code", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	m := bracketRe.FindStringSubmatch(e.mailer.lastBody(t))
	require.Len(t, m, 2)
	wrong := "0000"
	if wrong == m[1] {
		wrong = "0001"
	}

	w = e.post(t, "/api/auth/signup", gin.H{
		"display_name": "nova", "email": "a@x.com",
		"login_id": "validuser01", "password": "Str0ngPass!", "code": wrong,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, e.store.AccountCount())
}

func TestSignupDuplicateLoginID(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")

	w := e.post(t, "/api/auth/verification-code", gin.H{"email": "b@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	m := bracketRe.FindStringSubmatch(e.mailer.lastBody(t))

	w = e.post(t, "/api/auth/signup", gin.H{
		"display_name": "other", "email": "b@x.com",
		"login_id": "validuser01", "password": "Str0ngPass!", "code": m[1],
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestVerificationCodeTakenEmail(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")

	w := e.post(t, "/api/auth/verification-code", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRefreshLogout(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")

	w := e.post(t, "/api/auth/login", gin.H{"login_id": "validuser01", "password": "Str0ngPass!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tokens := decode(t, w)
	access, _ := tokens["access"].(string)
	refresh, _ := tokens["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	w = e.post(t, "/api/auth/refresh", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, decode(t, w)["access"])

	w = e.post(t, "/api/auth/logout", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusNoContent, w.Code)

	// Revoked token no longer refreshes.
	w = e.post(t, "/api/auth/refresh", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")

	w := e.post(t, "/api/auth/login", gin.H{"login_id": "validuser01", "password": "nope1234"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshGarbageToken(t *testing.T) {
	e := newEnv(t)
	w := e.post(t, "/api/auth/refresh", gin.H{"refresh": "not-a-token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFindLoginIDUniformResponse(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")

	known := e.post(t, "/api/auth/find-login-id", gin.H{"email": "a@x.com"})
	unknown := e.post(t, "/api/auth/find-login-id", gin.H{"email": "stranger@x.com"})
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	// Identical bodies: the response must not leak which emails exist.
	require.Equal(t, known.Body.String(), unknown.Body.String())
	require.Contains(t, e.mailer.lastBody(t), "validuser01")
}

func TestResetPassword(t *testing.T) {
	e := newEnv(t)
	e.signup(t, "nova", "a@x.com", "validuser01", "Str0ngPass!")

	w := e.post(t, "/api/auth/reset-password", gin.H{"login_id": "validuser01", "email": "wrong@x.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	before := e.mailer.count()
	w = e.post(t, "/api/auth/reset-password", gin.H{"login_id": "validuser01", "email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, before+1, e.mailer.count())

	m := bracketRe.FindStringSubmatch(e.mailer.lastBody(t))
	require.Len(t, m, 2)
	w = e.post(t, "/api/auth/login", gin.H{"login_id": "validuser01", "password": m[1]})
	require.Equal(t, http.StatusOK, w.Code, "temporary password must log in")
}

func TestOAuthUnknownProvider(t *testing.T) {
	e := newEnv(t)
	w := e.get(t, "/api/auth/myspace/login")
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = e.get(t, "/api/auth/myspace/callback")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	w := e.get(t, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decode(t, w)["status"])
}
