package output

import (
	"context"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

const (
	DefaultURLTTL = 15 * time.Minute
	MaxURLTTL     = time.Hour
)

// SignerProvider returns an IAM credentials client for signing URLs as a
// service account.
type SignerProvider interface {
	IAM(ctx context.Context) (*credentials.IamCredentialsClient, error)
}

// URLTTL clamps a requested lifetime to (0, MaxURLTTL], falling back to
// DefaultURLTTL.
func URLTTL(d time.Duration) time.Duration {
	if d <= 0 || d > MaxURLTTL {
		return DefaultURLTTL
	}
	return d
}

// SignedURL returns a V4 GET URL for the exported object at loc, signed by
// serviceAccount through the IAM SignBlob API.
func SignedURL(ctx context.Context, sp SignerProvider, loc Location, serviceAccount string, ttl time.Duration) (string, time.Time, error) {
	if loc.Bucket == "" {
		return "", time.Time{}, fmt.Errorf("signed URLs need a gs:// output, got %s", loc)
	}
	if serviceAccount == "" {
		return "", time.Time{}, fmt.Errorf("no service account to sign as")
	}
	if sp == nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client not available")
	}
	client, err := sp.IAM(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client init failed: %w", err)
	}

	exp := time.Now().Add(URLTTL(ttl))
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        exp,
		GoogleAccessID: serviceAccount,
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := client.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    "projects/-/serviceAccounts/" + serviceAccount,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}
	url, err := storage.SignedURL(loc.Bucket, loc.Object, opts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url (check service account + permissions): %w", err)
	}
	return url, exp, nil
}
