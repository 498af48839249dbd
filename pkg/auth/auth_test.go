package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "test-secret"
	testIssuer = "swiftsend"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   "64b0c5f2a1d2e3f4a5b6c7d8",
		Username: "alice",
	}
}

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)

	claims, err := v.Verify(signToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "64b0c5f2a1d2e3f4a5b6c7d8" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := NewVerifier(testSecret, testIssuer)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	noUser := validClaims()
	noUser.UserID = ""

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", signToken(t, "other-secret", validClaims()), ErrInvalidToken},
		{"expired", signToken(t, testSecret, expired), ErrExpiredToken},
		{"wrong issuer", signToken(t, testSecret, wrongIssuer), ErrInvalidToken},
		{"missing user id", signToken(t, testSecret, noUser), ErrInvalidToken},
	}
	for _, tc := range cases {
		if _, err := v.Verify(tc.token); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mw := NewMiddleware(NewVerifier(testSecret, testIssuer))
	router := gin.New()
	router.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+signToken(t, testSecret, validClaims()))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("query token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me?token="+signToken(t, testSecret, validClaims()), nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+signToken(t, "other-secret", validClaims()))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}
