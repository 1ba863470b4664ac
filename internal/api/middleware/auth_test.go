package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/anim_go_server/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeResolver 把 subject 映射到固定的本地用户
type fakeResolver struct {
	users  map[string]int64
	err    error
	calls  int
	lastID string
}

func (f *fakeResolver) ResolveUser(externalID, email, name string) (*model.User, error) {
	f.calls++
	f.lastID = externalID
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.users[externalID]
	if !ok {
		id = 1
	}
	return &model.User{ID: id, ExternalID: externalID, Email: email, Name: name}, nil
}

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signTestToken(t *testing.T, key *rsa.PrivateKey, subject string, expiresIn time.Duration) string {
	t.Helper()

	claims := jwtlib.MapClaims{
		"sub":   subject,
		"email": subject + "@example.com",
		"name":  "Test User",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func authRouter(key *rsa.PublicKey, resolver *fakeResolver) *gin.Engine {
	router := gin.New()
	router.Use(Auth(key, resolver))
	router.GET("/test", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestAuth_Success(t *testing.T) {
	key := generateTestKey(t)
	resolver := &fakeResolver{users: map[string]int64{"auth0|alice": 42}}
	router := authRouter(&key.PublicKey, resolver)

	token := signTestToken(t, key, "auth0|alice", time.Hour)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, "auth0|alice", resolver.lastID)
}

func TestAuth_TokenInQueryParam(t *testing.T) {
	key := generateTestKey(t)
	resolver := &fakeResolver{}
	router := authRouter(&key.PublicKey, resolver)

	// WebSocket 握手通过查询参数携带令牌
	token := signTestToken(t, key, "auth0|bob", time.Hour)

	req := httptest.NewRequest("GET", "/test?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "auth0|bob", resolver.lastID)
}

func TestAuth_MissingToken(t *testing.T) {
	key := generateTestKey(t)
	router := authRouter(&key.PublicKey, &fakeResolver{})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidFormat_NoBearer(t *testing.T) {
	key := generateTestKey(t)
	router := authRouter(&key.PublicKey, &fakeResolver{})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "some-token-without-bearer")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	key := generateTestKey(t)
	router := authRouter(&key.PublicKey, &fakeResolver{})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongKey(t *testing.T) {
	key := generateTestKey(t)
	otherKey := generateTestKey(t)
	router := authRouter(&key.PublicKey, &fakeResolver{})

	// 用另一把私钥签发的令牌验签必须失败
	token := signTestToken(t, otherKey, "auth0|eve", time.Hour)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	key := generateTestKey(t)
	router := authRouter(&key.PublicKey, &fakeResolver{})

	token := signTestToken(t, key, "auth0|late", -time.Hour)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID_NotSet(t *testing.T) {
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		assert.False(t, ok)
		assert.Equal(t, int64(0), userID)
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetExternalID(t *testing.T) {
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		c.Set(ExternalIDKey, "auth0|carol")
		externalID, ok := GetExternalID(c)
		assert.True(t, ok)
		assert.Equal(t, "auth0|carol", externalID)
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
