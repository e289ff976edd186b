package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/store"
)

type ctxKey string

const userIDKey ctxKey = "userID"

var timeNow = time.Now

// UserStore is the slice of the store needed for lazy user provisioning.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*store.User, error)
	CreateUser(ctx context.Context, user *store.User) error
}

// WithClerkAuthorization adapts Clerk's header-authorization middleware to
// gin. It validates the bearer token and attaches session claims to the
// request context; RequireAuth decides what to do when they are missing.
func WithClerkAuthorization() gin.HandlerFunc {
	return func(c *gin.Context) {
		var handled bool
		clerkhttp.WithHeaderAuthorization()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handled = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !handled {
			c.Abort()
		}
	}
}

// RequireAuth rejects unauthenticated requests and provisions the local
// user row on a user's first authenticated contact with the system. The
// row is keyed by the identity provider's subject id.
func RequireAuth(s UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := clerk.SessionClaimsFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    ErrorCodeUnauthorized,
					"message": "missing or invalid authentication",
				},
			})
			return
		}

		localUser, err := GetOrCreateUser(c.Request.Context(), s, claims.Subject)
		if err != nil {
			log.Printf("error provisioning user %s: %v", claims.Subject, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    ErrorCodeInternal,
					"message": "failed to provision user",
				},
			})
			return
		}

		c.Set(string(userIDKey), localUser.ID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(string(userIDKey))
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok
}

// GetOrCreateUser returns the user row for the provider subject, creating
// it if this is the subject's first contact. Creation races are benign:
// losing one means the row exists.
func GetOrCreateUser(ctx context.Context, s UserStore, subject string) (*store.User, error) {
	u, err := s.GetUserByID(ctx, subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	newUser := &store.User{
		ID:        subject,
		CreatedAt: timeNow(),
	}
	if err := s.CreateUser(ctx, newUser); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.GetUserByID(ctx, subject)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("provisioned new user: id=%s", newUser.ID)
	return newUser, nil
}
