// Package credential implements password credential artifacts.
//
// An artifact is a self-describing string of the form
//
//	iterations$saltHex$hashHex
//
// produced with PBKDF2-HMAC-SHA256. Verification always uses the iteration
// count and salt embedded in the stored artifact, never a package default,
// so records hashed under an older cost parameter stay verifiable after the
// default is raised.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/clinicore/clinicore/internal/common"
)

const (
	// DefaultIterations is the PBKDF2 cost applied to newly hashed passwords.
	DefaultIterations = 200_000

	saltBytes = 16
	keyBytes  = 32
)

// Hash derives a fresh credential artifact for password using
// DefaultIterations and a newly drawn 16-byte salt. Salts are never reused
// across calls.
func Hash(password string) string {
	return HashWithIterations(password, DefaultIterations)
}

// HashWithIterations is Hash with an explicit cost parameter. It exists so
// the cost can be raised without touching the verification path.
func HashWithIterations(password string, iterations int) string {
	salt := common.GenerateRandByteArray(saltBytes)
	hash := pbkdf2.Key([]byte(password), salt, iterations, keyBytes, sha256.New)
	return fmt.Sprintf("%d$%s$%s", iterations, hex.EncodeToString(salt), hex.EncodeToString(hash))
}

// Verify reports whether password matches the stored artifact. It never
// returns an error: a malformed artifact (wrong field count, non-numeric
// iteration count, corrupt hex) is a verification failure, not a fault.
// The hash comparison is constant-time in the secret bytes.
func Verify(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(parts[2])
	if err != nil || len(expected) == 0 {
		return false
	}

	derived := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
