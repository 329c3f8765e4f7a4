package cache

import (
	"crypto/cipher"
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/meridianpay/authgateway/internal/errors"
)

// Sealer encrypts cache payloads that carry crypto material (minted
// token entries, cached credential fallback records) before they reach
// the shared cache, so a
// compromised cache alone never yields usable secrets (spec §4.2, §8).
// Grounded on the at-rest-encryption requirement implied by spec §8
// ("crypto material must never be stored in plaintext outside the
// secret store"); no pack example does this explicitly, so the
// construction follows the standard AEAD seal/open idiom
// golang.org/x/crypto/chacha20poly1305 documents.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32-byte key, typically the cache
// encryption key from the process configuration (cache.encryption_key).
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(errors.KindInternal, "build cache sealer", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext, returning nonce||ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "generate nonce", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a nonce||ciphertext value produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, errors.New(errors.KindValidation, "sealed value too short")
	}
	nonce, ciphertext := sealed[:n], sealed[n:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, "decrypt sealed value", err)
	}
	return plaintext, nil
}
