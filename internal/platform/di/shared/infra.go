// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "emporia/internal/infra/config"
	"emporia/internal/infra/database"
	firestoreinfra "emporia/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - owns env/config-resolved runtime settings
//
// Firestore is strict (boot fails without it). Firebase Auth, GCS, Secret
// Manager and Postgres are best-effort: a missing one degrades its feature
// (auth 503s, images unsigned, mail off, export off) instead of killing boot.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore    *firestore.Client
	firestoreCW  *firestoreinfra.ClientWrapper
	GCS          *storage.Client
	FirebaseApp  *firebase.App
	FirebaseAuth *firebaseauth.Client
	Postgres     *database.DB

	// SendGridAPIKey is resolved from Secret Manager when configured,
	// falling back to the plain env var.
	SendGridAPIKey string
}

// NewInfra initializes shared infra.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{Config: cfg, ProjectID: projectID}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[shared.infra] using credentials file for GCP clients")
	} else {
		log.Printf("[shared.infra] using Application Default Credentials")
	}

	// 1) Firestore (strict)
	cw, err := firestoreinfra.NewClient(ctx, projectID, credFile)
	if err != nil {
		return nil, err
	}
	inf.firestoreCW = cw
	inf.Firestore = cw.Client

	// 2) Firebase Auth (best-effort)
	fbProject := strings.TrimSpace(cfg.FirebaseProjectID)
	if fbProject == "" {
		fbProject = projectID
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fbProject}, clientOpts...)
	if err != nil {
		log.Printf("[shared.infra] WARN: firebase app init failed: %v (auth endpoints will 503)", err)
	} else {
		inf.FirebaseApp = app
		authClient, err := app.Auth(ctx)
		if err != nil {
			log.Printf("[shared.infra] WARN: firebase auth init failed: %v (auth endpoints will 503)", err)
		} else {
			inf.FirebaseAuth = authClient
		}
	}

	// 3) GCS (best-effort; image signing off without it)
	gcsClient, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		log.Printf("[shared.infra] WARN: gcs init failed: %v (item images served unsigned)", err)
	} else {
		inf.GCS = gcsClient
	}

	// 4) SendGrid key: Secret Manager first, env fallback
	inf.SendGridAPIKey = resolveSendGridKey(ctx, cfg, projectID, clientOpts)

	// 5) Postgres reporting mirror (optional)
	if strings.TrimSpace(cfg.PGHost) != "" {
		pg, err := database.NewConnection(cfg.PGHost, cfg.PGPort, cfg.PGUser, cfg.PGPassword, cfg.PGDatabase)
		if err != nil {
			log.Printf("[shared.infra] WARN: postgres init failed: %v (order export disabled)", err)
		} else {
			inf.Postgres = pg
		}
	}

	return inf, nil
}

func resolveSendGridKey(ctx context.Context, cfg *appcfg.Config, projectID string, opts []option.ClientOption) string {
	secretName := strings.TrimSpace(cfg.SendGridSecretName)
	if secretName == "" {
		return strings.TrimSpace(cfg.SendGridAPIKey)
	}

	sm, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		log.Printf("[shared.infra] WARN: secretmanager init failed: %v (falling back to SENDGRID_API_KEY)", err)
		return strings.TrimSpace(cfg.SendGridAPIKey)
	}
	defer func() { _ = sm.Close() }()

	name := secretName
	if !strings.HasPrefix(name, "projects/") {
		name = "projects/" + projectID + "/secrets/" + name + "/versions/latest"
	}

	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil || resp == nil || resp.Payload == nil {
		log.Printf("[shared.infra] WARN: AccessSecretVersion failed for %s: %v (falling back to SENDGRID_API_KEY)", name, err)
		return strings.TrimSpace(cfg.SendGridAPIKey)
	}

	return strings.TrimSpace(string(resp.Payload.Data))
}

// Close releases owned clients.
func (i *Infra) Close() {
	if i == nil {
		return
	}
	if i.Postgres != nil {
		_ = i.Postgres.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.firestoreCW != nil {
		_ = i.firestoreCW.Close()
	}
}
