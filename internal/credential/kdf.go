package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/meridianpay/authgateway/internal/errors"
)

// Argon2id parameters. The teacher hashes human passwords with
// bcrypt.DefaultCost (services/gateway/services/auth/domain/auth/auth.go);
// client credential secrets are machine-generated high-entropy strings
// rather than human passwords, so this package uses Argon2id instead —
// see DESIGN.md's open-question entry for the reasoning.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// HashSecret derives a salted Argon2id hash of secret, encoded as
// "$argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<hash>", the
// conventional PHC string format.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(errors.KindInternal, "generate salt", err)
	}
	hash := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// CompareSecret reports whether secret matches encodedHash, in constant
// time with respect to the comparison itself.
func CompareSecret(encodedHash, secret string) (bool, error) {
	salt, wantHash, params, err := decodeHash(encodedHash)
	if err != nil {
		return false, errors.Wrap(errors.KindInternal, "decode credential hash", err)
	}

	gotHash := argon2.IDKey([]byte(secret), salt, params.time, params.memory, params.threads, uint32(len(wantHash)))
	return subtle.ConstantTimeCompare(gotHash, wantHash) == 1, nil
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeHash(encoded string) (salt, hash []byte, params argonParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, argonParams{}, fmt.Errorf("unrecognized hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, argonParams{}, fmt.Errorf("parse version: %w", err)
	}

	var mem uint32
	var timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &timeCost, &threads); err != nil {
		return nil, nil, argonParams{}, fmt.Errorf("parse params: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, argonParams{}, fmt.Errorf("decode salt: %w", err)
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, argonParams{}, fmt.Errorf("decode hash: %w", err)
	}

	return salt, hash, argonParams{memory: mem, time: timeCost, threads: threads}, nil
}
