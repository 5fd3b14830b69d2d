// Command devtoken prints a bearer token for a user ID, signed with JWT_SECRET.
// It stands in for the external auth service during local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"holidaymatch/config"
	"holidaymatch/internal/adapters/auth"
)

func main() {
	userID := flag.String("user", "", "user ID to put in the token subject")
	email := flag.String("email", "", "email claim (optional)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*userID, *email, *ttl)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
}
