// api/internal/infrastructure/crypto/envelope.go
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Category labels how the UI intends to display a sealed payload.
// It is informational only and never changes how bytes are encrypted.
type Category string

const (
	CategoryImage  Category = "image"
	CategoryDNS    Category = "dns"
	CategoryStream Category = "stream"
)

const (
	prefixImage  = "IMG"
	prefixDNS    = "DNS"
	prefixStream = "STR"

	// PrefixSize is the fixed width of the category tag on the wire.
	PrefixSize = 3
	// NonceSize is GCM's standard 96-bit nonce.
	NonceSize = 12
	// KeySize enforces AES-256.
	KeySize = 32
)

var (
	// ErrEncrypt surfaces any cipher or encoding failure during Seal.
	ErrEncrypt = errors.New("crypto: encryption failed")

	// ErrDecrypt is the ONLY error Open returns. Bad base64, a wrong
	// nonce, a wrong key, and a failed authentication tag all collapse
	// into this one message so callers cannot be used as an oracle.
	ErrDecrypt = errors.New("crypto: decryption failed - invalid key, nonce, or ciphertext")
)

// Envelope is the unit exchanged between Seal and Open: a category-tagged
// base64 ciphertext and the base64 nonce that sealed it. Both encodings are
// standard base64 with padding, never URL-safe.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

// Key is an opaque, immutable handle around a precomputed AEAD.
// 🛡️ Safe to share across concurrent Seal/Open calls; the raw key
// material is zeroized as soon as the AEAD is constructed.
type Key struct {
	aead cipher.AEAD
}

// GenerateKey draws a fresh random 256-bit key and wraps it in a handle.
func GenerateKey() (Key, error) {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return Key{}, fmt.Errorf("crypto: key generation failure: %w", err)
	}
	return NewKey(raw)
}

// NewKey builds a handle from raw key material. The caller's slice is
// zeroized before returning, success or not.
func NewKey(raw []byte) (Key, error) {
	defer func() {
		for i := range raw {
			raw[i] = 0
		}
	}()

	if len(raw) != KeySize {
		return Key{}, errors.New("crypto: key must be 32 bytes for AES-256")
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return Key{}, fmt.Errorf("crypto: block cipher failure: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Key{}, fmt.Errorf("crypto: GCM failure: %w", err)
	}

	return Key{aead: aead}, nil
}

// IsZero reports whether the handle was never initialized.
func (k Key) IsZero() bool {
	return k.aead == nil
}

// ParseCategory maps a user-supplied label onto the closed category set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryImage, CategoryDNS, CategoryStream:
		return Category(s), nil
	}
	return "", fmt.Errorf("crypto: unknown category %q", s)
}

func (c Category) wirePrefix() (string, bool) {
	switch c {
	case CategoryImage:
		return prefixImage, true
	case CategoryDNS:
		return prefixDNS, true
	case CategoryStream:
		return prefixStream, true
	}
	return "", false
}

// Classify peels a recognized category tag off a tagged ciphertext and
// returns the remaining payload. An unrecognized or absent tag classifies
// as stream and leaves the string untouched (preserved reference behavior,
// intent unverified).
func Classify(tagged string) (Category, string) {
	if len(tagged) >= PrefixSize {
		switch tagged[:PrefixSize] {
		case prefixImage:
			return CategoryImage, tagged[PrefixSize:]
		case prefixDNS:
			return CategoryDNS, tagged[PrefixSize:]
		case prefixStream:
			return CategoryStream, tagged[PrefixSize:]
		}
	}
	return CategoryStream, tagged
}

// Seal encrypts plaintext under key with a fresh random nonce and returns
// the tagged envelope. Every call draws its own 12-byte nonce; nonces are
// never cached or shared (reuse under one key breaks GCM entirely).
func Seal(plaintext string, key Key, cat Category) (Envelope, error) {
	if key.IsZero() {
		return Envelope{}, fmt.Errorf("%w: nil key handle", ErrEncrypt)
	}

	prefix, ok := cat.wirePrefix()
	if !ok {
		return Envelope{}, fmt.Errorf("%w: unknown category %q", ErrEncrypt, cat)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Envelope{}, fmt.Errorf("%w: nonce generation: %v", ErrEncrypt, err)
	}

	// Ciphertext carries the 16-byte GCM tag appended by Seal.
	sealed := key.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return Envelope{
		Ciphertext: prefix + base64.StdEncoding.EncodeToString(sealed),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

// Open verifies and decrypts an envelope, returning the recovered plaintext
// and the category declared by the tag. Any failure — malformed base64,
// wrong nonce length, wrong key, tampered bytes — returns ErrDecrypt with
// no further detail.
func Open(env Envelope, key Key) (string, Category, error) {
	if key.IsZero() {
		return "", "", ErrDecrypt
	}

	cat, payload := Classify(env.Ciphertext)

	sealed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", ErrDecrypt
	}

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return "", "", ErrDecrypt
	}

	plaintext, err := key.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", "", ErrDecrypt
	}

	return string(plaintext), cat, nil
}
