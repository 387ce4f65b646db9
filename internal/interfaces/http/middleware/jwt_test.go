package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "wms-test",
		MaxRefreshCount:        10,
	})
}

func newProtectedRouter(cfg JWTMiddlewareConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuth(cfg))
	handlers := append(extra, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":     p.UserID.String(),
			"role":        p.Role,
			"log_user_id": logger.GetUserID(c.Request.Context()),
			"log_cust_id": logger.GetCustomerID(c.Request.Context()),
			"has_claims":  GetClaims(c) != nil,
		})
	})
	router.GET("/api/test", handlers...)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.RequestID)
	return resp.Error.Code
}

func TestJWTAuth_ClientToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	customerID := uuid.New()
	input := auth.GenerateTokenInput{UserID: uuid.New(), Username: "jane", Role: identity.RoleClient, CustomerID: &customerID}
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	rec := doGet(newProtectedRouter(JWTMiddlewareConfig{JWTService: svc}), "/api/test", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, input.UserID.String(), body["user_id"])
	assert.Equal(t, "CLIENT", body["role"])
	assert.Equal(t, input.UserID.String(), body["log_user_id"])
	assert.Equal(t, customerID.String(), body["log_cust_id"])
	assert.Equal(t, true, body["has_claims"])
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "admin", Role: identity.RoleAdmin})
	require.NoError(t, err)
	expired, err := newTestJWTService(-time.Minute).GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "old", Role: identity.RoleAdmin})
	require.NoError(t, err)

	router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc})

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"garbage", "not-a-jwt", dto.ErrCodeTokenInvalid},
		{"refresh token used as access", pair.RefreshToken, dto.ErrCodeTokenInvalid},
		{"expired", expired.AccessToken, dto.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(router, "/api/test", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestJWTAuth_NonBearerSchemeIsUnauthorized(t *testing.T) {
	router := newProtectedRouter(JWTMiddlewareConfig{JWTService: newTestJWTService(time.Minute)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set(AuthHeaderKey, "Basic YWRtaW46c2VjcmV0")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, rec))
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	router := newProtectedRouter(JWTMiddlewareConfig{
		JWTService: newTestJWTService(time.Minute),
		SkipPaths:  []string{"/health"},
	})
	assert.Equal(t, http.StatusOK, doGet(router, "/health", "").Code)
}

func TestJWTAuth_Blacklist(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()
	router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "admin", Role: identity.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, doGet(router, "/api/test", pair.AccessToken).Code)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	rec := doGet(router, "/api/test", pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, rec))
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := newProtectedRouter(JWTMiddlewareConfig{JWTService: svc}, RequireRole(identity.RoleAdmin))

	customerID := uuid.New()
	client, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "jane", Role: identity.RoleClient, CustomerID: &customerID})
	require.NoError(t, err)
	admin, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Username: "admin", Role: identity.RoleAdmin})
	require.NoError(t, err)

	rec := doGet(router, "/api/test", client.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, rec))

	assert.Equal(t, http.StatusOK, doGet(router, "/api/test", admin.AccessToken).Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", RequireRole(identity.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := doGet(router, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, rec))
}
