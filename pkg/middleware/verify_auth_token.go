package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/dice-ledger-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/dice-ledger-backend/pkg/firebase"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenRequired string = "error.token.required"
	accessTokenInvalid  string = "error.token.invalid"

	CallerUidKey string = "callerUid"
)

type TokenVerifier func(ctx context.Context, idToken string) (*auth.Token, error)

func VerifyAuthToken(c *gin.Context) {
	VerifyAuthTokenWith(firebase.VerifyIdToken)(c)
}

// VerifyAuthTokenWith checks the bearer token and stores the caller uid on the context.
func VerifyAuthTokenWith(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		idTokenValue := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if idTokenValue == "" {
			log.Warn().Str("path", c.FullPath()).Msg("Token missing: 401")
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				reject.NewProblem().
					WithTitle("Missing access token").
					WithStatus(http.StatusUnauthorized).
					WithCode(accessTokenRequired).
					Build())
			return
		}

		token, err := verify(c.Request.Context(), idTokenValue)
		if err != nil {
			log.Warn().Err(err).Msg("Error verifying token")
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				reject.NewProblem().
					WithTitle("Cannot verify access token").
					WithStatus(http.StatusUnauthorized).
					WithCode(accessTokenInvalid).
					WithDetail(err.Error()).
					Build())
			return
		}

		c.Set(CallerUidKey, token.UID)
		c.Next()
	}
}
