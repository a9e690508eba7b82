package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Size is the length of a digest in bytes.
const Size = sha256.Size

// Digest identifies file content by its SHA-256 hash. Two files with the
// same digest are treated as the same photo regardless of their names.
type Digest [Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 8 hex characters, used for filename suffixes.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:4])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func Parse(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}

	if len(raw) != Size {
		return d, fmt.Errorf("invalid digest length %d, want %d", len(raw), Size)
	}

	copy(d[:], raw)
	return d, nil
}

// File computes the digest of the file at path with bounded memory.
func File(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}

	return fromHash(h), nil
}

// Writer tees everything written to the underlying writer into a SHA-256
// state, so a file can be hashed while it is being copied.
type Writer struct {
	inner io.Writer
	h     hash.Hash
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{inner: w, h: sha256.New()}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	if n > 0 {
		w.h.Write(p[:n])
	}

	return n, err
}

// Sum returns the digest of all bytes written so far.
func (w *Writer) Sum() Digest {
	return fromHash(w.h)
}

func fromHash(h hash.Hash) Digest {
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}
