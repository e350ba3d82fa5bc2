package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

// StorageProvider returns a Cloud Storage client on demand.
type StorageProvider interface {
	Storage(ctx context.Context) (*storage.Client, error)
}

// Location is where command output goes: stdout, a local file, or a
// gs://bucket/object.
type Location struct {
	Bucket string
	Object string
	File   string
}

func (l Location) String() string {
	switch {
	case l.Bucket != "":
		return "gs://" + l.Bucket + "/" + l.Object
	case l.File != "":
		return l.File
	}
	return "stdout"
}

func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return Location{}, nil
	}
	if rest, ok := strings.CutPrefix(s, "gs://"); ok {
		bucket, object, _ := strings.Cut(rest, "/")
		if bucket == "" || object == "" {
			return Location{}, fmt.Errorf("invalid storage location %q, want gs://bucket/object", s)
		}
		return Location{Bucket: bucket, Object: object}, nil
	}
	return Location{File: s}, nil
}

// Write stores data at loc. Objects are written with contentType.
func Write(ctx context.Context, loc Location, stdout io.Writer, storage StorageProvider, data []byte, contentType string) error {
	switch {
	case loc.Bucket != "":
		return writeObject(ctx, storage, loc, data, contentType)
	case loc.File != "":
		if err := os.WriteFile(loc.File, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", loc.File, err)
		}
		return nil
	}
	_, err := stdout.Write(data)
	return err
}

func writeObject(ctx context.Context, sp StorageProvider, loc Location, data []byte, contentType string) error {
	if sp == nil {
		return fmt.Errorf("no storage client for %s", loc)
	}
	client, err := sp.Storage(ctx)
	if err != nil {
		return fmt.Errorf("storage client init failed: %w", err)
	}
	w := client.Bucket(loc.Bucket).Object(loc.Object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", loc, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", loc, err)
	}
	return nil
}
