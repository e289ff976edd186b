package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/api"
	"github.com/Gori/mininews/internal/contacts"
	"github.com/Gori/mininews/internal/store"
)

func contactJSON(c store.ContactWithStatus) gin.H {
	out := gin.H{
		"id":            c.ID,
		"newsletter_id": c.NewsletterID,
		"email":         c.Email,
		"first_name":    c.FirstName,
		"last_name":     c.LastName,
		"subscribed_at": c.SubscribedAt.Format(time.RFC3339),
		"is_subscribed": c.UnsubscribedAt == nil,
	}
	if c.UnsubscribedAt != nil {
		out["unsubscribed_at"] = c.UnsubscribedAt.Format(time.RFC3339)
	} else {
		out["unsubscribed_at"] = nil
	}
	return out
}

// listContacts returns the newsletter's contacts ordered by email; ?q=
// filters by case-insensitive substring over email and names.
func (app *app) listContacts(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	list, err := app.contacts.List(c.Request.Context(), a.Newsletter.ID, c.Query("q"))
	if err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to fetch contacts")
		return
	}

	result := make([]gin.H, 0, len(list))
	for _, contact := range list {
		result = append(result, contactJSON(contact))
	}
	c.JSON(http.StatusOK, result)
}

// addContact is the management path: duplicates are a conflict, never a
// silent success.
func (app *app) addContact(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	var req struct {
		Email     string  `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "invalid request body")
		return
	}

	contact, err := app.contacts.Add(c.Request.Context(), a.Newsletter.ID, req.Email, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, contacts.ErrEmailRequired):
			api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Email is required")
		case errors.Is(err, contacts.ErrContactExists):
			api.AbortJSONError(c, http.StatusConflict, api.ErrorCodeConflict, "Contact with this email already exists")
		default:
			api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to add contact")
		}
		return
	}

	c.JSON(http.StatusCreated, contactJSON(store.ContactWithStatus{Contact: *contact}))
}

func (app *app) deleteContact(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	err := app.contacts.Remove(c.Request.Context(), a.Newsletter.ID, c.Param("contactId"))
	if err != nil {
		if errors.Is(err, contacts.ErrContactNotFound) {
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "contact not found")
			return
		}
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to delete contact")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (app *app) unsubscribeContact(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	err := app.contacts.Unsubscribe(c.Request.Context(), a.Newsletter.ID, c.Param("contactId"))
	if err != nil {
		switch {
		case errors.Is(err, contacts.ErrContactNotFound):
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "contact not found")
		case errors.Is(err, contacts.ErrAlreadyUnsubscribed):
			api.AbortJSONError(c, http.StatusConflict, api.ErrorCodeConflict, "Contact is already unsubscribed")
		default:
			api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to unsubscribe contact")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// resubscribeContact clears the unsubscribe state; resubscribing an
// already-subscribed contact succeeds as a no-op.
func (app *app) resubscribeContact(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	err := app.contacts.Resubscribe(c.Request.Context(), a.Newsletter.ID, c.Param("contactId"))
	if err != nil {
		if errors.Is(err, contacts.ErrContactNotFound) {
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "contact not found")
			return
		}
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to resubscribe contact")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
