package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/skillswap/internal/config"
	"github.com/iliyamo/skillswap/internal/repository/memory"
	"github.com/iliyamo/skillswap/internal/service"
	"github.com/iliyamo/skillswap/internal/storage"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type apiResp struct {
	Code int
	Body map[string]any
}

func (r apiResp) msg() string {
	s, _ := r.Body["message"].(string)
	return s
}

func (r apiResp) obj(key string) map[string]any {
	m, _ := r.Body[key].(map[string]any)
	return m
}

func (r apiResp) list(key string) []any {
	l, _ := r.Body[key].([]any)
	return l
}

func setupServer(t *testing.T) *echo.Echo {
	t.Helper()
	return newServer(t, "", storage.NewMemory("http://test/uploads"))
}

// setupDiskServer stores avatars under a temp dir served at /uploads.
func setupDiskServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	return newServer(t, dir, storage.NewLocal(dir, "http://test/uploads"))
}

func newServer(t *testing.T, uploadDir string, objects storage.ObjectStore) *echo.Echo {
	t.Helper()
	st := memory.New()
	users := service.NewUserService(st.Users, objects, service.UserOptions{BcryptCost: bcrypt.MinCost})
	return New(Deps{
		Config: config.Config{JWTSecret: "test-secret", AvatarMaxBytes: 1 << 20, UploadDir: uploadDir},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Auth:   service.NewAuthService(users, st.Sessions, service.AuthOptions{Secret: "test-secret"}),
		Users:  users,
		Skills: service.NewSkillService(st.Skills, st.Users),
		Swaps:  service.NewSwapService(st.Swaps, nil),
	})
}

func send(t *testing.T, e *echo.Echo, req *http.Request, token string) apiResp {
	t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	out := apiResp{Code: rec.Code}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.Body), rec.Body.String())
	}
	return out
}

func call(t *testing.T, e *echo.Echo, method, path string, body any, token string) apiResp {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return send(t, e, req, token)
}

// signUp registers name and returns its id and access token.
func signUp(t *testing.T, e *echo.Echo, name string) (string, string) {
	t.Helper()
	res := call(t, e, http.MethodPost, "/api/auth/register", map[string]string{
		"username": name, "email": name + "@x.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.msg())
	return res.obj("user")["id"].(string), res.obj("session")["access_token"].(string)
}

func TestAuth_RegisterLoginSession(t *testing.T) {
	e := setupServer(t)

	res := call(t, e, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "Alice@X.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, true, res.Body["success"])
	require.Equal(t, "User created successfully.", res.msg())
	user := res.obj("user")
	require.Equal(t, "alice@x.com", user["email"])
	require.Equal(t, "public", user["privacy"])
	require.NotContains(t, user, "password_hash")
	require.NotEmpty(t, res.obj("session")["refresh_token"])
	id := user["id"].(string)

	res = call(t, e, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "again", "email": "alice@x.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusConflict, res.Code)
	require.Equal(t, "User already exists with this email.", res.msg())

	res = call(t, e, http.MethodPost, "/api/auth/register", map[string]string{"username": "bob", "email": "bob@x.com"}, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "Username, email, and password are required.", res.msg())

	res = call(t, e, http.MethodPost, "/api/auth/register", map[string]string{"username": "bob", "email": "nope", "password": "x"}, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "Please provide a valid email address.", res.msg())

	res = call(t, e, http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@x.com", "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "Invalid email or password.", res.msg())

	res = call(t, e, http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Login successful", res.msg())
	token := res.obj("session")["access_token"].(string)
	refresh := res.obj("session")["refresh_token"].(string)

	res = call(t, e, http.MethodGet, "/api/auth/me/"+id, nil, token)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, id, res.obj("user")["id"])

	res = call(t, e, http.MethodGet, "/api/auth/me/someone-else", nil, token)
	require.Equal(t, http.StatusForbidden, res.Code)

	res = call(t, e, http.MethodGet, "/api/auth/me/missing", nil, "")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "User profile not found", res.msg())

	res = call(t, e, http.MethodGet, "/api/auth/session", nil, token)
	require.Equal(t, http.StatusOK, res.Code)
	require.NotContains(t, res.obj("session"), "refresh_token")

	res = call(t, e, http.MethodGet, "/api/auth/session", nil, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "Access token required", res.msg())

	res = call(t, e, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, res.Code)

	res = call(t, e, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Logged out successfully", res.msg())
}

func TestUsers_ProfileAndPublic(t *testing.T) {
	e := setupServer(t)

	res := call(t, e, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Carol", "email": "carol@x.com", "password": "secret",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "User created successfully", res.msg())
	require.NotContains(t, res.Body, "session")
	carol := res.obj("user")["id"].(string)

	daveID, daveToken := signUp(t, e, "dave")

	res = call(t, e, http.MethodPut, "/api/users/profile/"+daveID, map[string]string{"privacy": "private"}, daveToken)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "private", res.obj("user")["privacy"])

	res = call(t, e, http.MethodPut, "/api/users/profile/"+daveID, map[string]string{"privacy": "friends"}, daveToken)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "Privacy must be public or private.", res.msg())

	res = call(t, e, http.MethodPut, "/api/users/profile/"+carol, map[string]string{"location": "Oslo"}, daveToken)
	require.Equal(t, http.StatusForbidden, res.Code)

	res = call(t, e, http.MethodGet, "/api/users/public", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	users := res.list("users")
	require.Len(t, users, 1)
	require.Equal(t, carol, users[0].(map[string]any)["id"])
	require.NotContains(t, users[0], "email")

	res = call(t, e, http.MethodGet, "/api/users/profile/"+carol, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Carol", res.obj("user")["username"])
}

func uploadReq(t *testing.T, userID, contentType string, data []byte) *http.Request {
	t.Helper()
	return uploadNamedReq(t, userID, "me.png", contentType, data)
}

func uploadNamedReq(t *testing.T, userID, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/upload-avatar/"+userID, &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestUsers_UploadAvatar(t *testing.T) {
	e := setupServer(t)
	id, token := signUp(t, e, "alice")

	res := send(t, e, uploadReq(t, id, "text/plain", []byte("hello")), token)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "Only image files are allowed.", res.msg())

	res = call(t, e, http.MethodGet, "/api/users/profile/"+id, nil, "")
	require.Empty(t, res.obj("user")["avatar"], "a rejected upload leaves the avatar unchanged")

	res = call(t, e, http.MethodPost, "/api/users/upload-avatar/"+id, map[string]string{}, token)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "No file uploaded.", res.msg())

	res = send(t, e, uploadReq(t, id, "image/png", pngBytes), token)
	require.Equal(t, http.StatusOK, res.Code, res.msg())
	require.Contains(t, res.Body["avatarUrl"], "http://test/uploads/avatars/"+id+"_")
	require.Equal(t, res.Body["avatarUrl"], res.obj("user")["avatar"])
}

func TestUsers_AvatarServedAsImage(t *testing.T) {
	e := setupDiskServer(t)
	id, token := signUp(t, e, "alice")

	// PNG magic followed by markup, uploaded under an HTML name.
	body := append(append([]byte{}, pngBytes...), []byte("<html><script>alert(document.cookie)</script></html>")...)
	res := send(t, e, uploadNamedReq(t, id, "evil.html", "image/png", body), token)
	require.Equal(t, http.StatusOK, res.Code, res.msg())
	avatar, _ := res.Body["avatarUrl"].(string)
	require.True(t, strings.HasSuffix(avatar, ".png"), avatar)
	require.NotContains(t, avatar, ".html")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(avatar, "http://test"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	require.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	require.Contains(t, rec.Header().Get(echo.HeaderContentSecurityPolicy), "sandbox")
}

func TestSkills_Flow(t *testing.T) {
	e := setupServer(t)
	alice, aliceToken := signUp(t, e, "alice")
	bob, bobToken := signUp(t, e, "bob")

	res := call(t, e, http.MethodPost, "/api/skills/offered", map[string]string{
		"user_id": alice, "skill_name": "Guitar Basics", "description": "chords",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "Skill added successfully", res.msg())
	require.Equal(t, "Other", res.obj("skill")["category"])
	skillID := res.obj("skill")["id"].(string)

	res = call(t, e, http.MethodPost, "/api/skills/offered", map[string]string{"user_id": alice}, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "User ID and skill name are required.", res.msg())

	res = call(t, e, http.MethodPost, "/api/skills/wanted", map[string]string{"user_id": alice, "skill_name": "Piano"}, bobToken)
	require.Equal(t, http.StatusForbidden, res.Code, "bearer and body user must match")

	res = call(t, e, http.MethodGet, "/api/skills/search?q=guit", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	found := res.list("skills")
	require.Len(t, found, 1)
	require.Equal(t, "Guitar Basics", found[0].(map[string]any)["skill_name"])
	require.Equal(t, alice, found[0].(map[string]any)["user"].(map[string]any)["id"])

	res = call(t, e, http.MethodGet, "/api/skills/search", nil, "")
	require.Equal(t, http.StatusBadRequest, res.Code)

	res = call(t, e, http.MethodGet, "/api/skills/category/other", nil, "")
	require.Len(t, res.list("skills"), 1)

	res = call(t, e, http.MethodDelete, "/api/skills/offered/"+skillID+"?user_id="+bob, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	res = call(t, e, http.MethodGet, "/api/skills/offered/user/"+alice, nil, "")
	require.Len(t, res.list("skills"), 1, "a non-owner delete leaves the skill")

	res = call(t, e, http.MethodDelete, "/api/skills/offered/"+skillID, map[string]string{"user_id": alice}, aliceToken)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Skill deleted successfully", res.msg())
	res = call(t, e, http.MethodGet, "/api/skills/offered", nil, "")
	require.Empty(t, res.list("skills"))

	res = call(t, e, http.MethodGet, "/api/skills/categories", nil, "")
	require.Contains(t, res.list("categories"), "Other")
}

func TestSwaps_ReceiverOnly(t *testing.T) {
	e := setupServer(t)
	alice, _ := signUp(t, e, "alice")
	bob, bobToken := signUp(t, e, "bob")

	res := call(t, e, http.MethodPost, "/api/swaps", map[string]string{"requester_id": alice, "receiver_id": bob}, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "All required fields must be provided.", res.msg())

	res = call(t, e, http.MethodPost, "/api/swaps", map[string]string{
		"requester_id": alice, "receiver_id": bob, "offered_skill_id": "s1", "wanted_skill_id": "s2", "message": "trade?",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "pending", res.obj("swap")["status"])
	swapID := res.obj("swap")["id"].(string)

	res = call(t, e, http.MethodPut, "/api/swaps/"+swapID+"/status", map[string]string{"status": "accepted", "user_id": alice}, "")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "Swap request not found.", res.msg())

	res = call(t, e, http.MethodPut, "/api/swaps/"+swapID+"/status", map[string]string{"status": "maybe", "user_id": bob}, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "Invalid status. Must be accepted, declined, or completed.", res.msg())

	res = call(t, e, http.MethodPut, "/api/swaps/"+swapID+"/status", map[string]string{"status": "accepted", "user_id": bob}, bobToken)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "accepted", res.obj("swap")["status"])

	res = call(t, e, http.MethodGet, "/api/swaps/user/"+alice, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	swaps := res.list("swaps")
	require.Len(t, swaps, 1)
	require.Equal(t, "accepted", swaps[0].(map[string]any)["status"])

	res = call(t, e, http.MethodGet, "/api/swaps/user/"+alice, nil, bobToken)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRoutes_Misc(t *testing.T) {
	e := setupServer(t)

	res := call(t, e, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, map[string]any{"success": false, "message": "Route not found"}, res.Body)

	res = call(t, e, http.MethodGet, "/api/test", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Skill Swap Platform Server is working!", res.msg())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res = send(t, e, req, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "Invalid request body.", res.msg())
}

func TestBodyLimit(t *testing.T) {
	require.Equal(t, "2048K", bodyLimit(1<<20))
	require.Equal(t, "6144K", bodyLimit(0))
}

func TestWithCORS(t *testing.T) {
	h := WithCORS(setupServer(t), []string{"http://app.test"})
	req := httptest.NewRequest(http.MethodOptions, "/api/skills/offered", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSkills_AddUnknownUser(t *testing.T) {
	e := setupServer(t)
	res := call(t, e, http.MethodPost, "/api/skills/offered", map[string]string{
		"user_id": "no-such-user", "skill_name": "Guitar Basics",
	}, "")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "User not found.", res.msg())
}
