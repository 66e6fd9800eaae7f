package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ContextKeyFirebaseUID is the key for the Firebase UID in the Gin context
const ContextKeyFirebaseUID = "firebase_uid"

// TokenVerifier checks an ID token and returns the caller's UID and claims.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware validates Firebase ID tokens and injects the UID into context.
// Lookups work anonymously; only search history requires a signed-in user.
type AuthMiddleware struct {
	client TokenVerifier
}

// NewAuthMiddleware creates a new Firebase auth middleware. credentialsFile
// is optional; without it the Admin SDK uses application default credentials.
func NewAuthMiddleware(ctx context.Context, projectID, credentialsFile string) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, errors.New("firebase project ID is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase auth: %w", err)
	}

	return &AuthMiddleware{client: client}, nil
}

// NewAuthMiddlewareWithVerifier is used by tests and alternative identity providers.
func NewAuthMiddlewareWithVerifier(v TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{client: v}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (am *AuthMiddleware) verify(c *gin.Context, raw string) bool {
	token, err := am.client.VerifyIDToken(c.Request.Context(), raw)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to verify Firebase token")
		return false
	}
	c.Set(ContextKeyFirebaseUID, token.UID)
	return true
}

// Authenticate rejects requests without a valid token.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing Authorization header",
			})
			return
		}

		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format",
			})
			return
		}

		if !am.verify(c, raw) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Next()
	}
}

// Identify attaches the caller's UID when a valid token is present and lets
// everyone else through anonymously.
func (am *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			am.verify(c, raw)
		}
		c.Next()
	}
}

// GetFirebaseUID extracts the Firebase UID from the Gin context
func GetFirebaseUID(c *gin.Context) string {
	uid, _ := c.Get(ContextKeyFirebaseUID)
	if s, ok := uid.(string); ok {
		return s
	}
	return ""
}
