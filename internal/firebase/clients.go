package firebase

import (
	"context"
	"sync"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type storageClient struct {
	once   sync.Once
	client *storage.Client
	err    error
}

func (s *storageClient) close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

type iamClient struct {
	once   sync.Once
	client *credentials.IamCredentialsClient
	err    error
}

func (c *iamClient) close() {
	if c.client != nil {
		_ = c.client.Close()
	}
}

// remote returns client options for services that have no emulator.
func (h *Holder) remote() []option.ClientOption {
	cfg := h.cfg
	cfg.UseEmulator = false
	return clientOptions(cfg)
}

// Storage returns the Cloud Storage client used for gs:// exports. It always
// talks to the real service, even when Firestore targets the emulator.
func (h *Holder) Storage(ctx context.Context) (*storage.Client, error) {
	h.storage.once.Do(func() {
		h.storage.client, h.storage.err = storage.NewClient(ctx, h.remote()...)
	})
	return h.storage.client, h.storage.err
}

// IAM returns the IAM credentials client used to sign export URLs.
func (h *Holder) IAM(ctx context.Context) (*credentials.IamCredentialsClient, error) {
	h.iam.once.Do(func() {
		h.iam.client, h.iam.err = credentials.NewIamCredentialsClient(ctx, h.remote()...)
	})
	return h.iam.client, h.iam.err
}
