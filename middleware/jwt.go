package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/pkg/errors"

	"github.com/andrewpaige1/engcard-api/config"
)

// EnsureValidToken requires a bearer token minted by auth.CreateToken on
// every request. With no JWT secret configured requests pass through.
func EnsureValidToken(env *config.Environment) (func(http.Handler) http.Handler, error) {
	if !env.AuthEnabled() {
		log.Println("EnsureValidToken: JWT_SECRET_KEY not set, API is unauthenticated")
		return func(next http.Handler) http.Handler { return next }, nil
	}

	secret := []byte(env.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	jwtValidator, err := validator.New(
		keyFunc,
		validator.HS256,
		env.JWTIssuer,
		[]string{env.JWTAudience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up the jwt validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("EnsureValidToken: encountered error while validating JWT: %v", err)
		writeJSONError(w, http.StatusUnauthorized, "Failed to validate JWT.")
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(next)
	}, nil
}
