package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/theracare/sessioncore/common"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := DeriveKey([]byte("master-passphrase"), []byte("fixed-salt"))
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}
	return c
}

func TestDeriveKey_Deterministic(t *testing.T) {
	key1 := DeriveKey([]byte("secret"), []byte("salt"))
	key2 := DeriveKey([]byte("secret"), []byte("salt"))

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	key1 := DeriveKey([]byte("secret"), []byte("salt-1"))
	key2 := DeriveKey([]byte("secret"), []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestNewCipher_RejectsBadKeyLength(t *testing.T) {
	if _, err := NewCipher(make([]byte, 16)); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := testCipher(t)

	for _, plaintext := range []string{"", "short", "client reported improved sleep this week"} {
		env, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}
		got, err := c.Decrypt(env)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if got != plaintext {
			t.Errorf("round trip mismatch: want %q, got %q", plaintext, got)
		}
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	c := testCipher(t)

	env1, err := c.Encrypt("same text")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	env2, err := c.Encrypt("same text")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if bytes.Equal(env1.Nonce, env2.Nonce) {
		t.Errorf("nonce reused across encryptions")
	}
	if env1.Ciphertext == env2.Ciphertext {
		t.Errorf("identical ciphertexts for independent encryptions")
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	c := testCipher(t)
	env, err := c.Encrypt("confidential")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	other, err := NewCipher(DeriveKey([]byte("other-passphrase"), []byte("fixed-salt")))
	if err != nil {
		t.Fatalf("NewCipher error: %v", err)
	}

	if _, err := other.Decrypt(env); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	c := testCipher(t)
	env, err := c.Encrypt("confidential")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	ct, _ := hex.DecodeString(env.Ciphertext)
	ct[0] ^= 0xff
	env.Ciphertext = hex.EncodeToString(ct)

	if _, err := c.Decrypt(env); !errors.Is(err, common.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEnvelope_SerializeParse(t *testing.T) {
	c := testCipher(t)
	env, err := c.Encrypt("note body")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	parsed, err := ParseEnvelope(env.String())
	if err != nil {
		t.Fatalf("ParseEnvelope error: %v", err)
	}
	got, err := c.Decrypt(parsed)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if got != "note body" {
		t.Errorf("expected %q, got %q", "note body", got)
	}
}

func TestParseEnvelope_Malformed(t *testing.T) {
	tests := []string{
		"",
		"no-separator",
		"zzzz:00ff",                          // bad nonce hex
		"00ff:00ff",                          // nonce too short
		strings.Repeat("0", 24) + ":not-hex", // bad ciphertext hex
	}
	for _, s := range tests {
		if _, err := ParseEnvelope(s); !errors.Is(err, common.ErrDecryptionFailed) {
			t.Errorf("ParseEnvelope(%q): expected ErrDecryptionFailed, got %v", s, err)
		}
	}
}
