package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = argon2.Version

// Upper bounds accepted when parsing a stored credential. A stored string
// claiming larger costs is treated as malformed.
const (
	maxMemoryKiB   = 1024 * 1024
	maxIterations  = 32
	maxParallelism = 64
	minSaltLength  = 8
	maxSaltLength  = 64
	minKeyLength   = 16
	maxKeyLength   = 128
)

// Argon2Params are the Argon2id cost parameters. MemoryKiB is in KiB as
// expected by argon2.IDKey.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// ErrInvalidArgon2Params is returned by Argon2Params.Validate.
var ErrInvalidArgon2Params = errors.New("argon2 parameters out of range")

// Validate reports whether credentials hashed with p can be verified again.
// The bounds are the ones VerifyPassword enforces on stored strings.
func (p Argon2Params) Validate() error {
	switch {
	case p.Iterations == 0 || p.Iterations > maxIterations:
		return fmt.Errorf("%w: iterations must be 1..%d", ErrInvalidArgon2Params, maxIterations)
	case p.Parallelism == 0 || uint32(p.Parallelism) > maxParallelism:
		return fmt.Errorf("%w: parallelism must be 1..%d", ErrInvalidArgon2Params, maxParallelism)
	case p.MemoryKiB < 8*uint32(p.Parallelism) || p.MemoryKiB > maxMemoryKiB:
		return fmt.Errorf("%w: memory must be %d..%d KiB", ErrInvalidArgon2Params, 8*uint32(p.Parallelism), maxMemoryKiB)
	case p.SaltLength < minSaltLength || p.SaltLength > maxSaltLength:
		return fmt.Errorf("%w: salt length must be %d..%d", ErrInvalidArgon2Params, minSaltLength, maxSaltLength)
	case p.KeyLength < minKeyLength || p.KeyLength > maxKeyLength:
		return fmt.Errorf("%w: key length must be %d..%d", ErrInvalidArgon2Params, minKeyLength, maxKeyLength)
	}
	return nil
}

// DefaultArgon2Params mirrors the argon2 reference defaults used for
// interactive logins.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKiB:   19 * 1024,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// HashPassword derives an Argon2id credential from password with a fresh
// random salt. The result is self-describing:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
//
// It fails only when the system random source fails.
func HashPassword(password []byte, p Argon2Params) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the stored credential.
// Malformed or unsupported credentials never match.
func VerifyPassword(password []byte, encoded string) bool {
	p, salt, expected, ok := decodeCredential(encoded)
	if !ok {
		return false
	}

	key := argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	return subtle.ConstantTimeCompare(key, expected) == 1
}

func decodeCredential(encoded string) (Argon2Params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, false
	}

	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Argon2Params{}, nil, nil, false
	}

	var mem, it, par uint32
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil || n != 3 {
		return Argon2Params{}, nil, nil, false
	}
	if mem == 0 || mem > maxMemoryKiB || it == 0 || it > maxIterations || par == 0 || par > maxParallelism {
		return Argon2Params{}, nil, nil, false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLength || len(salt) > maxSaltLength {
		return Argon2Params{}, nil, nil, false
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil || len(hash) < minKeyLength || len(hash) > maxKeyLength {
		return Argon2Params{}, nil, nil, false
	}

	return Argon2Params{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par), // #nosec G115 -- bounded by maxParallelism above.
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(hash)),
	}, salt, hash, true
}
