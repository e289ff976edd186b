package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/access"
	"github.com/Gori/mininews/internal/api"
)

// listMembers returns the owner (synthesized) followed by the explicit
// members, with identity details from the directory.
func (app *app) listMembers(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	members, err := app.members.List(c.Request.Context(), a)
	if err != nil {
		api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to fetch members")
		return
	}

	c.JSON(http.StatusOK, members)
}

func (app *app) addMember(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Email is required")
		return
	}

	err := app.members.Invite(c.Request.Context(), a, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrNotOwner):
			api.AbortJSONError(c, http.StatusForbidden, api.ErrorCodeForbidden, "not authorized to add members to this newsletter")
		case errors.Is(err, access.ErrInvalidRole):
			api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Invalid role")
		case errors.Is(err, access.ErrUserNotFound):
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "User with this email not found")
		case errors.Is(err, access.ErrAlreadyOwner):
			api.AbortJSONError(c, http.StatusConflict, api.ErrorCodeConflict, "User is the owner of this newsletter")
		case errors.Is(err, access.ErrAlreadyMember):
			api.AbortJSONError(c, http.StatusConflict, api.ErrorCodeConflict, "User is already a member of this newsletter")
		default:
			api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to add member")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (app *app) removeMember(c *gin.Context) {
	a, ok := app.resolveAccess(c)
	if !ok {
		return
	}

	memberID := c.Query("memberId")
	if memberID == "" {
		api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Member ID is required")
		return
	}

	err := app.members.Remove(c.Request.Context(), a, memberID)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrNotOwner):
			api.AbortJSONError(c, http.StatusForbidden, api.ErrorCodeForbidden, "not authorized to remove members from this newsletter")
		case errors.Is(err, access.ErrCannotRemoveOwner):
			api.AbortJSONError(c, http.StatusBadRequest, api.ErrorCodeValidation, "Cannot remove the owner")
		case errors.Is(err, access.ErrMemberNotFound):
			api.AbortJSONError(c, http.StatusNotFound, api.ErrorCodeNotFound, "member not found")
		default:
			api.AbortJSONError(c, http.StatusInternalServerError, api.ErrorCodeInternal, "failed to remove member")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
