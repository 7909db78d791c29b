package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for new hashes. Existing hashes keep the parameters
// embedded in their encoding.
const (
	argonMemory  = 64 * 1024
	argonTime    = 3
	argonThreads = 2
	argonKeyLen  = 32
	argonSaltLen = 16
)

// HashPassword derives an argon2id hash in the standard encoded form.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, errRead := rand.Read(salt); errRead != nil {
		return "", fmt.Errorf("security: generate salt: %w", errRead)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return encoded, nil
}

// VerifyPassword reports whether password matches the encoded argon2id hash.
// Malformed hashes verify as false rather than erroring; the caller only
// branches on the boolean.
func VerifyPassword(encoded, password string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, errScan := fmt.Sscanf(parts[2], "v=%d", &version); errScan != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, errScan := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); errScan != nil {
		return false
	}

	salt, errSalt := base64.RawStdEncoding.DecodeString(parts[4])
	if errSalt != nil {
		return false
	}
	want, errKey := base64.RawStdEncoding.DecodeString(parts[5])
	if errKey != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
