// internal/infra/config/config.go
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the environment configuration for the whole app.
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string
	GCPCreds                 string

	// Item image bucket (signed URL resolution); empty disables signing.
	ItemImageBucket string

	// Order confirmation mail. The API key may come from Secret Manager
	// (SENDGRID_SECRET_NAME) instead of the plain env var.
	SendGridAPIKey     string
	SendGridSecretName string
	MailFromAddress    string

	// Optional Postgres reporting mirror; empty host disables the export.
	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string
}

// Load reads the environment (plus a best-effort .env for local dev).
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		ItemImageBucket: os.Getenv("ITEM_IMAGE_BUCKET"),

		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		SendGridSecretName: os.Getenv("SENDGRID_SECRET_NAME"),
		MailFromAddress:    getenvDefault("MAIL_FROM_ADDRESS", "no-reply@emporia.example"),

		PGHost:     os.Getenv("PG_HOST"),
		PGPort:     getenvDefault("PG_PORT", "5432"),
		PGUser:     os.Getenv("PG_USER"),
		PGPassword: os.Getenv("PG_PASSWORD"),
		PGDatabase: os.Getenv("PG_DATABASE"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
