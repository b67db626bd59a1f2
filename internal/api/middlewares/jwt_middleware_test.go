package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T) http.Handler {
	t.Helper()
	return JWTMiddleware("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, ok := SubjectFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(sub))
	}))
}

func call(h http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tok, err := IssueToken("s3cret", "alice", time.Hour)
	require.NoError(t, err)

	rec := call(protected(t), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	wrongKey, err := IssueToken("other", "alice", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken("s3cret", "alice", -time.Minute)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, auth := range map[string]string{
		"missing":    "",
		"no bearer":  "Token " + wrongKey,
		"garbage":    "Bearer not.a.jwt",
		"wrong key":  "Bearer " + wrongKey,
		"expired":    "Bearer " + expired,
		"no subject": "Bearer " + noSubject,
		"wrong alg":  "Bearer " + wrongAlg,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, call(protected(t), auth).Code)
		})
	}
}

func TestIssueToken_Validation(t *testing.T) {
	_, err := IssueToken("", "alice", time.Hour)
	assert.Error(t, err)
	_, err = IssueToken("s3cret", "", time.Hour)
	assert.Error(t, err)
}
