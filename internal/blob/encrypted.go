package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/hugh/go-crm/pkg/crypto"
)

// Encrypted wraps a Store with age encryption. Stored objects are opaque
// ciphertext; the real content type lives in the file metadata.
type Encrypted struct {
	inner Store
	enc   *crypto.Encryptor
}

func NewEncrypted(inner Store, enc *crypto.Encryptor) *Encrypted {
	return &Encrypted{inner: inner, enc: enc}
}

func (e *Encrypted) Put(ctx context.Context, key string, r io.Reader, _ string) error {
	pr, pw := io.Pipe()

	go func() {
		w, err := e.enc.EncryptTo(pw)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(w, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(w.Close())
	}()

	err := e.inner.Put(ctx, key, pr, "application/octet-stream")
	// Unblocks the writer if the inner store stopped reading early.
	pr.Close()
	return err
}

func (e *Encrypted) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := e.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := e.enc.DecryptFrom(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decrypting blob: %w", err)
	}
	return struct {
		io.Reader
		io.Closer
	}{plain, rc}, nil
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}

func (e *Encrypted) Close() error {
	return e.inner.Close()
}
