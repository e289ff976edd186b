package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gori/mininews/internal/access"
	"github.com/Gori/mininews/internal/api"
	"github.com/Gori/mininews/internal/store"
)

const maxNewsletterNameLength = 100

// resolveAccess authorizes the caller for the newsletter in the :id path
// parameter. On failure it writes the error response and returns false.
func (app *app) resolveAccess(c *gin.Context) (*access.Access, bool) {
	userID, ok := api.GetUserID(c)
	if !ok {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "missing user context")
		return nil, false
	}

	a, err := app.resolver.Resolve(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, access.ErrNewsletterNotFound):
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "newsletter not found")
		case errors.Is(err, access.ErrNotAuthorized):
			api.AbortJSONError(c, http.StatusForbidden, api.ErrorCodeForbidden, "not authorized to access this newsletter")
		default:
			api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to resolve access")
		}
		return nil, false
	}
	return a, true
}

func newsletterJSON(n *store.Newsletter, role access.Role) gin.H {
	out := gin.H{
		"id":              n.ID,
		"owner_id":        n.OwnerID,
		"name":            n.Name,
		"description":     n.Description,
		"drive_folder_id": n.DriveFolderID,
		"status":          string(n.Status),
		"created_at":      n.CreatedAt.Format(time.RFC3339),
		"role":            string(role),
	}
	if n.LastSentAt != nil {
		out["last_sent_at"] = n.LastSentAt.Format(time.RFC3339)
	} else {
		out["last_sent_at"] = nil
	}
	return out
}

func (app *app) getCurrentUser(c *gin.Context) {
	userID, ok := api.GetUserID(c)
	if !ok {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "missing user context")
		return
	}

	user, err := app.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "user not found")
			return
		}
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to fetch user")
		return
	}

	count, err := app.store.CountNewslettersByOwnerID(c.Request.Context(), userID)
	if err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to count newsletters")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                user.ID,
		"created_at":        user.CreatedAt.Format(time.RFC3339),
		"newsletters_count": count,
	})
}

// listNewsletters returns every newsletter the caller owns or is a member
// of, each tagged with the caller's role on it.
func (app *app) listNewsletters(c *gin.Context) {
	userID, ok := api.GetUserID(c)
	if !ok {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "missing user context")
		return
	}

	owned, err := app.store.ListNewslettersByOwnerID(c.Request.Context(), userID)
	if err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to list newsletters")
		return
	}

	member, err := app.store.ListMemberNewsletters(c.Request.Context(), userID)
	if err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to list newsletters")
		return
	}

	result := make([]gin.H, 0, len(owned)+len(member))
	for i := range owned {
		result = append(result, newsletterJSON(&owned[i], access.RoleOwner))
	}
	for i := range member {
		result = append(result, newsletterJSON(&member[i].Newsletter, access.Role(member[i].Role)))
	}

	c.JSON(http.StatusOK, gin.H{"newsletters": result})
}

func (app *app) createNewsletter(c *gin.Context) {
	userID, ok := api.GetUserID(c)
	if !ok {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "missing user context")
		return
	}

	count, err := app.store.CountNewslettersByOwnerID(c.Request.Context(), userID)
	if err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to count newsletters")
		return
	}
	if count >= app.config.Limits.MaxNewslettersPerUser {
		api.AbortJSONError(c, http.StatusForbidden, api.ErrorCodeQuota, "Newsletter limit reached")
		return
	}

	var req struct {
		Name          string  `json:"name"`
		Description   *string `json:"description"`
		DriveFolderID string  `json:"drive_folder_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DriveFolderID == "" {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Name and Drive folder ID are required")
		return
	}
	if len(req.Name) > maxNewsletterNameLength {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, fmt.Sprintf("name must be at most %d characters", maxNewsletterNameLength))
		return
	}

	n := &store.Newsletter{
		ID:            uuid.NewString(),
		OwnerID:       userID,
		Name:          req.Name,
		Description:   req.Description,
		DriveFolderID: req.DriveFolderID,
		Status:        store.StatusDraft,
		CreatedAt:     time.Now(),
	}

	if err := app.store.CreateNewsletter(c.Request.Context(), n); err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to create newsletter")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"newsletter": newsletterJSON(n, access.RoleOwner)})
}

func (app *app) getNewsletter(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"newsletter": newsletterJSON(a.Newsletter, a.Role)})
}

// updateNewsletter mutates settings; owner only.
func (app *app) updateNewsletter(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}
	if !a.IsOwner() {
		api.AbortJSONError(c, http.StatusForbidden, api.ErrorCodeForbidden, "not authorized to update this newsletter")
		return
	}

	var req struct {
		Name          string  `json:"name"`
		Description   *string `json:"description"`
		DriveFolderID string  `json:"drive_folder_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DriveFolderID == "" {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Name and Drive folder ID are required")
		return
	}
	if len(req.Name) > maxNewsletterNameLength {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, fmt.Sprintf("name must be at most %d characters", maxNewsletterNameLength))
		return
	}

	n := a.Newsletter
	n.Name = req.Name
	n.Description = req.Description
	n.DriveFolderID = req.DriveFolderID

	if err := app.store.UpdateNewsletter(c.Request.Context(), n); err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to update newsletter")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
