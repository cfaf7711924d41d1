// khabar HTTP server. All site branding and secrets come from environment
// variables.
package main

import (
	"log"
	"strings"

	khabar "github.com/rsaxena/khabar"
)

func main() {
	cfg := khabar.SiteConfig{
		Name:        khabar.EnvOr("SITE_NAME", "Khabar"),
		URL:         strings.TrimSuffix(khabar.EnvOr("SITE_URL", "http://localhost:3000"), "/"),
		Description: khabar.EnvOr("SITE_DESCRIPTION", ""),
		Author:      khabar.EnvOr("SITE_AUTHOR", ""),

		Addr:         khabar.EnvOr("LISTEN_ADDR", ":3000"),
		DatabasePath: khabar.EnvOr("DATABASE_PATH", "data/khabar.db"),

		AdminPassword: khabar.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: khabar.MustEnv("ADMIN_SESSION_SECRET"),
		CookieSecure:  strings.EqualFold(khabar.EnvOr("COOKIE_SECURE", ""), "true"),
	}

	app := khabar.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
