package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timesheet-api/internal/constants"
	"github.com/yukikurage/timesheet-api/internal/dto"
	apierrors "github.com/yukikurage/timesheet-api/internal/errors"
	"github.com/yukikurage/timesheet-api/internal/repository"
	"github.com/yukikurage/timesheet-api/internal/services"
	"go.uber.org/zap"
)

func TestAuthHandler_Signup(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := env.sessionRouter()

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "newuser",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	decode(t, w, &response)
	require.Equal(t, "newuser", response.Username)
	require.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")

	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "newuser",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "other",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	require.Equal(t, apierrors.ErrCodePasswordTooWeak, apiErr.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "other",
		"password": strings.Repeat("p", 80),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &apiErr)
	require.Equal(t, apierrors.ErrCodePasswordTooLong, apiErr.Code)
}

func TestAuthHandler_SignupDisabled(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.auth = NewAuthHandler(services.NewAuthService(
		repository.NewUserRepository(env.db), zap.NewNop(), services.WithRegistration(false)))

	w := doJSON(t, env.sessionRouter(), http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "newuser",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	require.Equal(t, apierrors.ErrCodeRegistrationDisabled, apiErr.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "existing")
	r := env.sessionRouter()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	decode(t, w, &response)
	require.Equal(t, "existing", response.Username)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	// the session cookie authenticates /me
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &response)
	require.Equal(t, "existing", response.Username)
}

func TestAuthHandler_LoginFailuresLookAlike(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "existing")
	r := env.sessionRouter()

	wrongPassword := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "not-the-password",
	})
	unknownUser := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "ghost",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupHandlerTestEnv(t)
	env.createUser(t, "existing")
	r := env.sessionRouter()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, w.Result().Cookies()...)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, w.Result().Cookies()...)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "current-user")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(constants.ContextKeyUserID, user.ID)

	env.auth.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	decode(t, w, &response)
	require.Equal(t, user.Username, response.Username)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := env.createUser(t, "alice")
	r := env.router(user.ID)

	w := doJSON(t, r, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "wrong-password",
		"new_password":     "new-secret",
		"confirm_password": "new-secret",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "supersecret",
		"new_password":     "new-secret",
		"confirm_password": "different",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "supersecret",
		"new_password":     "abc",
		"confirm_password": "abc",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/password", map[string]string{
		"current_password": "supersecret",
		"new_password":     "new-secret",
		"confirm_password": "new-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	_, err := env.authService.Login(services.LoginInput{Username: "alice", Password: "new-secret"})
	require.NoError(t, err)
}
