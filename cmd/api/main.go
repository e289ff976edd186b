package main

import (
	"context"
	"log"

	"github.com/clerk/clerk-sdk-go/v2"

	"github.com/Gori/mininews/internal/access"
	"github.com/Gori/mininews/internal/api"
	"github.com/Gori/mininews/internal/config"
	"github.com/Gori/mininews/internal/contacts"
	"github.com/Gori/mininews/internal/email"
	"github.com/Gori/mininews/internal/identity"
	"github.com/Gori/mininews/internal/store"
)

type app struct {
	config   *config.Config
	store    store.Store
	resolver *access.Resolver
	members  *access.Members
	contacts *contacts.Manager
	public   *api.PublicHandlers
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	s, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := s.Init(context.Background()); err != nil {
		log.Fatal(err)
	}

	if cfg.Clerk.SecretKey != "" {
		clerk.SetKey(cfg.Clerk.SecretKey)
		log.Printf("clerk authentication enabled")
	}

	directory := identity.NewCachedDirectory(identity.NewClerkDirectory(), cfg.Limits.DirectoryCacheTTL)
	mailer := email.New(cfg.SMTP)
	if mailer.Enabled() {
		log.Printf("opt-in confirmation mail enabled via %s", cfg.SMTP.Host)
	}

	manager := contacts.NewManager(s)

	app := &app{
		config:   cfg,
		store:    s,
		resolver: access.NewResolver(s),
		members:  access.NewMembers(s, directory),
		contacts: manager,
		public:   api.NewPublicHandlers(manager, s, mailer),
	}

	log.Printf("listening on :%d", cfg.Server.Port)

	log.Fatal(app.serve())
}
