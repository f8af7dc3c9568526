package auth

import (
	"log"
	"net/http"

	"github.com/focusaint/focusaint/internal/config"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// InitProviders initializes Goth OAuth providers
func InitProviders(cfg *config.Config) {
	// Gothic keeps its own gorilla/sessions store for the OAuth state
	// round trip. The default has Secure=true which breaks localhost.
	gothStore := sessions.NewCookieStore([]byte(cfg.OAuthStateSecret))
	gothStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600, // only needs to outlive one OAuth round trip
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = gothStore

	if cfg.GoogleClientID == "" {
		log.Println("WARNING: GOOGLE_CLIENT_ID not set. Google sign-in will not work until credentials are configured.")
		return
	}

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email",
			"profile",
		),
	)

	log.Println("Goth providers initialized: google")
}
