package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/engcard-api/auth"
	"github.com/andrewpaige1/engcard-api/config"
	"github.com/andrewpaige1/engcard-api/utils"
)

func subjectEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, _ := utils.GetSubject(r)
		w.Write([]byte(sub))
	})
}

func authEnv() *config.Environment {
	return &config.Environment{JWTSecret: "s3cret", JWTIssuer: "engcard-api", JWTAudience: "engcard"}
}

func TestEnsureValidTokenAcceptsMintedToken(t *testing.T) {
	env := authEnv()
	mw, err := EnsureValidToken(env)
	require.NoError(t, err)

	token, err := auth.CreateToken(env.JWTSecret, env.JWTIssuer, env.JWTAudience, "owner", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw(LogRequests(subjectEcho())).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner", rec.Body.String())
}

func TestEnsureValidTokenRejects(t *testing.T) {
	env := authEnv()
	mw, err := EnsureValidToken(env)
	require.NoError(t, err)

	wrongAudience, err := auth.CreateToken(env.JWTSecret, env.JWTIssuer, "someone-else", "owner", time.Hour)
	require.NoError(t, err)
	wrongSecret, err := auth.CreateToken("other", env.JWTIssuer, env.JWTAudience, "owner", time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":        "",
		"garbage":        "Bearer not-a-jwt",
		"wrong audience": "Bearer " + wrongAudience,
		"wrong secret":   "Bearer " + wrongSecret,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		mw(subjectEcho()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.JSONEq(t, `{"message":"Failed to validate JWT."}`, rec.Body.String(), name)
	}
}

func TestEnsureValidTokenDisabledWithoutSecret(t *testing.T) {
	mw, err := EnsureValidToken(&config.Environment{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mw(subjectEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cards", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestLogRequestsKeepsStatus(t *testing.T) {
	h := LogRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
