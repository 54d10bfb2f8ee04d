// Package privacy implements the field privacy engine: reversible
// authenticated encryption for sensitive free-text fields and deterministic,
// non-reversible masking for display-safe identity and contact fields.
package privacy

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/clinicore/clinicore/internal/common"
)

const nonceSize = 12

// Engine encrypts and decrypts field values under a single process-wide key.
// The key is loaded once at startup (see keystore) and treated as immutable
// for the process lifetime.
type Engine struct {
	aead cipher.AEAD
}

// NewEngine builds an Engine from a 16-, 24- or 32-byte AES key.
func NewEngine(key []byte) (*Engine, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("privacy: invalid key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("privacy: %w", err)
	}
	return &Engine{aead: aead}, nil
}

// Encrypt seals plaintext with AES-GCM under the process key and returns a
// base64 string of nonce||ciphertext. A fresh nonce is drawn per call, so
// equal plaintexts produce different ciphertexts.
func (e *Engine) Encrypt(plaintext string) (string, error) {
	nonce := common.GenerateRandByteArray(nonceSize)
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any value not produced by this engine under the
// current key (foreign, tampered, truncated) fails with
// common.ErrDecryptionFailed; it never returns garbage plaintext.
func (e *Engine) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrDecryptionFailed)
	}
	plaintext, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// EncryptField is Encrypt with null-passthrough: a nil input maps to a nil
// output without invoking the cipher.
func (e *Engine) EncryptField(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	out, err := e.Encrypt(*plaintext)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DecryptField is Decrypt with null-passthrough.
func (e *Engine) DecryptField(ciphertext *string) (*string, error) {
	if ciphertext == nil {
		return nil, nil
	}
	out, err := e.Decrypt(*ciphertext)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MaskIdentity replaces a name with a stable pseudonym: "ANON_" followed by
// the last 4 hex characters of the name's SHA-256 digest. The transform is
// deterministic so repeated views of the same person stay consistent.
// An empty name yields an empty pseudonym.
func MaskIdentity(name string) string {
	if name == "" {
		return ""
	}
	digest := sha256.Sum256([]byte(name))
	hexDigest := fmt.Sprintf("%x", digest)
	return "ANON_" + hexDigest[len(hexDigest)-4:]
}

// MaskContact keeps the last 4 digits of contact visible and replaces every
// earlier digit with 'X', scanning from the right so the "last 4 digits" are
// the true last four regardless of separators. Non-digit characters keep
// their positions. A contact with fewer than 4 digits passes through
// unchanged.
func MaskContact(contact string) string {
	if contact == "" {
		return ""
	}

	masked := []byte(contact)
	digitsSeen := 0
	for i := len(masked) - 1; i >= 0; i-- {
		if masked[i] < '0' || masked[i] > '9' {
			continue
		}
		digitsSeen++
		if digitsSeen > 4 {
			masked[i] = 'X'
		}
	}
	return string(masked)
}

// Anonymized is the privacy-safe projection of a patient record.
type Anonymized struct {
	Name               string
	Contact            string
	EncryptedDiagnosis string
}

// AnonymizeRecord composes the masking and encryption primitives: the name
// and contact are masked deterministically and the diagnosis is encrypted.
// Only an empty diagnosis skips encryption (yielding ""); a non-empty
// diagnosis is never returned in the clear.
func (e *Engine) AnonymizeRecord(name, contact, diagnosis string) (Anonymized, error) {
	out := Anonymized{
		Name:    MaskIdentity(name),
		Contact: MaskContact(contact),
	}

	if diagnosis != "" {
		enc, err := e.Encrypt(diagnosis)
		if err != nil {
			return Anonymized{}, err
		}
		out.EncryptedDiagnosis = enc
	}

	return out, nil
}
