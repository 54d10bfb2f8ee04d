package privacy

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/clinicore/clinicore/internal/common"
)

// KeyEnvName is the dotenv variable holding the base64-encoded process key.
const KeyEnvName = "PRIVACY_KEY"

const keyBytes = 32

// LoadOrCreateKey returns the process-wide encryption key stored in the
// dotenv file at path, generating and persisting a fresh 256-bit key on
// first use. Subsequent calls return the same key.
//
// Operational invariant: this file is the only copy of the key. Losing it
// makes every previously encrypted diagnosis permanently unrecoverable, so
// it must be backed up alongside the database.
func LoadOrCreateKey(path string) ([]byte, error) {
	env, err := godotenv.Read(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("keystore: reading %s: %w", path, err)
	}
	if env == nil {
		env = map[string]string{}
	}

	if encoded, ok := env[KeyEnvName]; ok && encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("keystore: %s is not valid base64: %w", KeyEnvName, err)
		}
		if len(key) != keyBytes {
			return nil, fmt.Errorf("keystore: %s must decode to %d bytes, got %d", KeyEnvName, keyBytes, len(key))
		}
		return key, nil
	}

	key := common.GenerateRandByteArray(keyBytes)
	env[KeyEnvName] = base64.StdEncoding.EncodeToString(key)

	if err := godotenv.Write(env, path); err != nil {
		return nil, fmt.Errorf("keystore: persisting %s: %w", path, err)
	}

	return key, nil
}
