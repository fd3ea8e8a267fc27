package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storeratings/internal/apperr"
	"storeratings/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID int, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticationMissingCookie(t *testing.T) {
	handler := Authentication(testSecret, nil, zerolog.Nop())(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationExpiredToken(t *testing.T) {
	handler := Authentication(testSecret, nil, zerolog.Nop())(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, 1, time.Now().Add(-time.Minute))})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationDeletedUser(t *testing.T) {
	resolve := func(userID int) (*models.User, error) {
		return nil, apperr.ErrUserNotFound
	}
	handler := Authentication(testSecret, resolve, zerolog.Nop())(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, 1, time.Now().Add(time.Hour))})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationResolvesFreshUser(t *testing.T) {
	// The token carries only the id; role comes from the resolver.
	resolve := func(userID int) (*models.User, error) {
		assert.Equal(t, 42, userID)
		return &models.User{ID: userID, Role: models.RoleOwner}, nil
	}

	var seen *models.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUser(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := Authentication(testSecret, resolve, zerolog.Nop())(inner)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, 42, time.Now().Add(time.Hour))})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, models.RoleOwner, seen.Role)
}

func TestRequireRoleForbidden(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(okHandler())

	req := WithUser(httptest.NewRequest("GET", "/", nil), &models.User{ID: 1, Role: models.RoleNormalUser})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowsAnyOfSet(t *testing.T) {
	handler := RequireRole(models.RoleAdmin, models.RoleOwner)(okHandler())

	req := WithUser(httptest.NewRequest("GET", "/", nil), &models.User{ID: 1, Role: models.RoleOwner})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestValidationContentType(t *testing.T) {
	handler := RequestValidation()(okHandler())

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("GET", "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandlingRecoversPanic(t *testing.T) {
	handler := ErrorHandling(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
