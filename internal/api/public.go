package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/contacts"
	"github.com/Gori/mininews/internal/email"
	"github.com/Gori/mininews/internal/store"
)

type NewsletterGetter interface {
	GetNewsletterByID(ctx context.Context, id string) (*store.Newsletter, error)
}

// PublicHandlers serves the unauthenticated surface. Responses here must
// never reveal whether an email is already known and must never carry
// store error text.
type PublicHandlers struct {
	contacts *contacts.Manager
	store    NewsletterGetter
	mailer   *email.Sender
}

func NewPublicHandlers(m *contacts.Manager, s NewsletterGetter, mailer *email.Sender) *PublicHandlers {
	return &PublicHandlers{contacts: m, store: s, mailer: mailer}
}

// Subscribe handles POST /public/subscribe. New, resubscribed and
// already-subscribed contacts all get the same response body.
func (h *PublicHandlers) Subscribe(c *gin.Context) {
	var req struct {
		NewsletterID string  `json:"newsletter_id"`
		Email        string  `json:"email"`
		FirstName    *string `json:"first_name"`
		LastName     *string `json:"last_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body")
		return
	}

	if req.NewsletterID == "" || req.Email == "" {
		JSONError(c, http.StatusBadRequest, ErrorCodeValidation, "Newsletter ID and email are required")
		return
	}

	result, err := h.contacts.Subscribe(c.Request.Context(), req.NewsletterID, req.Email, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, contacts.ErrNewsletterNotFound):
			JSONError(c, http.StatusNotFound, ErrorCodeNotFound, "Newsletter not found")
		case errors.Is(err, contacts.ErrEmailRequired):
			JSONError(c, http.StatusBadRequest, ErrorCodeValidation, "Newsletter ID and email are required")
		default:
			log.Printf("public subscribe failed for newsletter %s: %v", req.NewsletterID, err)
			JSONError(c, http.StatusInternalServerError, ErrorCodeInternal, "Internal server error")
		}
		return
	}

	if result != contacts.OptInAlreadySubscribed {
		h.sendConfirmation(req.NewsletterID, req.Email)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PublicHandlers) sendConfirmation(newsletterID, to string) {
	if h.mailer == nil || !h.mailer.Enabled() {
		return
	}

	n, err := h.store.GetNewsletterByID(context.Background(), newsletterID)
	if err != nil {
		log.Printf("confirmation mail: fetch newsletter %s: %v", newsletterID, err)
		return
	}

	go func() {
		if err := h.mailer.SendSubscribeConfirmation(to, n.Name); err != nil {
			log.Printf("failed to send confirmation email to %s: %v", to, err)
		}
	}()
}
