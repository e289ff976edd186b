package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/store"
)

// ClerkWebhook handles identity-provider events. Only user.created is
// acted on: the local user row is provisioned so the first API call does
// not have to. Creation is idempotent with RequireAuth's lazy path.
func ClerkWebhook(s UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event struct {
			Type string `json:"type"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}

		if err := c.ShouldBindJSON(&event); err != nil {
			JSONError(c, http.StatusBadRequest, ErrorCodeValidation, "invalid webhook payload")
			return
		}

		if event.Type != "user.created" {
			log.Printf("ignoring webhook event type: %s", event.Type)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}

		if event.Data.ID == "" {
			JSONError(c, http.StatusBadRequest, ErrorCodeValidation, "missing user id")
			return
		}

		err := s.CreateUser(c.Request.Context(), &store.User{
			ID:        event.Data.ID,
			CreatedAt: timeNow(),
		})
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			log.Printf("webhook: create user %s: %v", event.Data.ID, err)
			JSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "Internal server error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
