package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gori/mininews/internal/api"
)

func (app *app) routes() http.Handler {
	g := gin.Default()
	g.Use(corsMiddleware())

	timeout := app.config.Server.HandlerTimeout

	g.GET("/health", healthHandler)
	g.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "OK\n")
	})

	public := g.Group("/public")
	{
		public.POST("/subscribe", withTimeout(timeout, app.public.Subscribe))
	}

	g.POST("/webhooks/clerk", withTimeout(timeout, api.ClerkWebhook(app.store)))

	authed := g.Group("/", api.WithClerkAuthorization(), api.RequireAuth(app.store))
	{
		authed.GET("/me", withTimeout(timeout, app.getCurrentUser))

		authed.GET("/newsletters", withTimeout(timeout, app.listNewsletters))
		authed.POST("/newsletters", withTimeout(timeout, app.createNewsletter))
		authed.GET("/newsletters/:id", withTimeout(timeout, app.getNewsletter))
		authed.PATCH("/newsletters/:id", withTimeout(timeout, app.updateNewsletter))

		authed.GET("/newsletters/:id/contacts", withTimeout(timeout, app.listContacts))
		authed.POST("/newsletters/:id/contacts", withTimeout(timeout, app.addContact))
		authed.DELETE("/newsletters/:id/contacts/:contactId", withTimeout(timeout, app.deleteContact))
		authed.POST("/newsletters/:id/contacts/:contactId/unsubscribe", withTimeout(timeout, app.unsubscribeContact))
		authed.POST("/newsletters/:id/contacts/:contactId/resubscribe", withTimeout(timeout, app.resubscribeContact))

		authed.GET("/newsletters/:id/members", withTimeout(timeout, app.listMembers))
		authed.POST("/newsletters/:id/members", withTimeout(timeout, app.addMember))
		authed.DELETE("/newsletters/:id/members", withTimeout(timeout, app.removeMember))
	}

	return g
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func withTimeout(d time.Duration, fn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		fn(c)
	}
}
