// Package blob stores file attachment contents behind opaque keys.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/hugh/go-crm/pkg/config"
	"github.com/hugh/go-crm/pkg/crypto"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is a flat key/value blob store. Delete of a missing key is not an
// error.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the configured backend. A non-nil encryptor wraps it so every
// blob is encrypted at rest.
func New(ctx context.Context, cfg config.StorageConfig, enc *crypto.Encryptor, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case "", "local":
		store, err = NewLocal(cfg.LocalDir)
	case "s3":
		store, err = NewS3(ctx, cfg)
	case "gcs":
		store, err = NewGCS(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("blob store ready", "backend", cfg.Backend, "encrypted", enc != nil)
	if enc != nil {
		return NewEncrypted(store, enc), nil
	}
	return store, nil
}

// cleanKey rejects keys that could escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return key, nil
}

func objectName(prefix, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return path.Join(prefix, key), nil
	}
	return key, nil
}
