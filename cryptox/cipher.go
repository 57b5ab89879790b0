// Package cryptox implements the note cipher: AES-256-GCM envelope
// encryption for clinical note bodies, with argon2id key derivation from
// the configured master passphrase.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/theracare/sessioncore/common"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	nonceSize = 12
)

// DeriveKey derives a KeySize-byte encryption key from a passphrase and salt
// using argon2id. Same inputs always produce the same key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Envelope bundles the nonce and hex-encoded ciphertext of one encrypted
// note body. Envelopes are immutable once created.
type Envelope struct {
	Nonce      []byte
	Ciphertext string
}

// String returns the serialized envelope form "nonceHex:ciphertextHex".
func (e *Envelope) String() string {
	return hex.EncodeToString(e.Nonce) + ":" + e.Ciphertext
}

// ParseEnvelope parses the serialized form produced by String.
// Malformed input is reported as common.ErrDecryptionFailed.
func ParseEnvelope(s string) (*Envelope, error) {
	nonceHex, cipherHex, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: malformed envelope", common.ErrDecryptionFailed)
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != nonceSize {
		return nil, fmt.Errorf("%w: malformed nonce", common.ErrDecryptionFailed)
	}
	if _, err := hex.DecodeString(cipherHex); err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", common.ErrDecryptionFailed)
	}
	return &Envelope{Nonce: nonce, Ciphertext: cipherHex}, nil
}

// Cipher encrypts and decrypts note bodies under a single process-wide key.
// The key is injected at construction; construction fails on a bad key so
// a missing secret surfaces at startup, not per request.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher for the given AES-256 key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("note cipher: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("note cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("note cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext under a fresh random nonce. Every call
// generates a new nonce; reuse would break the cipher mode.
func (c *Cipher) Encrypt(plaintext string) (*Envelope, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return &Envelope{Nonce: nonce, Ciphertext: hex.EncodeToString(ct)}, nil
}

// Decrypt recovers the plaintext from an envelope. A wrong key, a truncated
// nonce, or tampered ciphertext all surface as common.ErrDecryptionFailed;
// callers isolate the failure per note, never per request.
func (c *Cipher) Decrypt(env *Envelope) (string, error) {
	if len(env.Nonce) != nonceSize {
		return "", fmt.Errorf("%w: malformed nonce", common.ErrDecryptionFailed)
	}
	ct, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", common.ErrDecryptionFailed)
	}
	plaintext, err := c.aead.Open(nil, env.Nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}
