package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktabhq/maktab-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims models.ActorClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func actorRouter() (*gin.Engine, *models.Actor) {
	gin.SetMode(gin.TestMode)
	seen := &models.Actor{}
	r := gin.New()
	r.Use(Actor(testSecret))
	r.GET("/probe", func(c *gin.Context) {
		*seen = CurrentActor(c)
		c.Status(http.StatusOK)
	})
	return r, seen
}

func TestActorMiddlewareAcceptsValidToken(t *testing.T) {
	router, seen := actorRouter()

	token := signToken(t, models.ActorClaims{
		UserID:   "u-1",
		FullName: "Ustadh Kareem",
		Role:     models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "u-1", seen.ID)
	assert.Equal(t, "Ustadh Kareem", seen.Name)
}

func TestActorMiddlewareRejectsMissingHeader(t *testing.T) {
	router, _ := actorRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestActorMiddlewareRejectsWrongSecret(t *testing.T) {
	router, _ := actorRouter()

	token := signToken(t, models.ActorClaims{UserID: "u-1"}, "other-secret")
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestActorMiddlewareRejectsExpiredToken(t *testing.T) {
	router, _ := actorRouter()

	token := signToken(t, models.ActorClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestActorMiddlewareRejectsMalformedHeader(t *testing.T) {
	router, _ := actorRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
