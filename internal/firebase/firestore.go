package firebase

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"

	"flame/cli/internal/config"
)

// Holder lazily creates the Firebase app and its clients, at most once per
// process, and hands the same instances to every caller.
type Holder struct {
	cfg config.FlameConfig

	appOnce sync.Once
	app     *firebase.App
	appErr  error

	fsOnce sync.Once
	fs     *firestore.Client
	fsErr  error

	storage storageClient
	iam     iamClient
}

func NewHolder(cfg config.FlameConfig) *Holder {
	return &Holder{cfg: cfg}
}

func (h *Holder) Config() config.FlameConfig { return h.cfg }

func (h *Holder) App(ctx context.Context) (*firebase.App, error) {
	h.appOnce.Do(func() {
		if err := h.cfg.Validate(); err != nil {
			h.appErr = err
			return
		}
		h.app, h.appErr = NewApp(ctx, h.cfg)
	})
	return h.app, h.appErr
}

func (h *Holder) Firestore(ctx context.Context) (*firestore.Client, error) {
	h.fsOnce.Do(func() {
		app, err := h.App(ctx)
		if err != nil {
			h.fsErr = fmt.Errorf("firebase app init failed: %w", err)
			return
		}
		h.fs, h.fsErr = app.Firestore(ctx)
	})
	return h.fs, h.fsErr
}

func (h *Holder) Close() {
	if h == nil {
		return
	}
	if h.fs != nil {
		_ = h.fs.Close()
	}
	h.storage.close()
	h.iam.close()
}
