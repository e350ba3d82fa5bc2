package firebase

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"flame/cli/internal/config"
)

// EmulatorHostEnv is read by the Firestore client to redirect all traffic.
const EmulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

func clientOptions(cfg config.FlameConfig) []option.ClientOption {
	opts := []option.ClientOption{}
	if cfg.UseEmulator {
		// the emulator accepts unauthenticated requests
		return append(opts, option.WithoutAuthentication())
	}
	// raw service account JSON wins over a key file path; with neither set the
	// client falls back to application default credentials
	if json := getenv("FIREBASE_SERVICE_ACCOUNT_JSON", ""); json != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(json)))
	} else if cred := getenv("GOOGLE_APPLICATION_CREDENTIALS", ""); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}
	return opts
}

func NewApp(ctx context.Context, cfg config.FlameConfig) (*firebase.App, error) {
	if cfg.UseEmulator {
		if err := os.Setenv(EmulatorHostEnv, cfg.EmulatorAddr()); err != nil {
			return nil, err
		}
	}
	appCfg := &firebase.Config{ProjectID: cfg.Project}
	return firebase.NewApp(ctx, appCfg, clientOptions(cfg)...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
