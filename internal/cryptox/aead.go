package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NonceSize is the AES-GCM nonce length prepended to every sealed blob.
const NonceSize = 12

// KeySize is the required symmetric key length (AES-256).
const KeySize = 32

var (
	// ErrCiphertextTooShort is returned for blobs that cannot even hold a nonce and tag.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrDecrypt is returned when a blob fails authentication or is not valid hex.
	ErrDecrypt = errors.New("decryption failed")
	// ErrInvalidKey is returned when key material is not 32 bytes of hex.
	ErrInvalidKey = errors.New("invalid encryption key")
)

// randReader is a seam for tests that need the random source to fail.
var randReader io.Reader = rand.Reader

// Key is a 256-bit AES key.
type Key [KeySize]byte

// ParseHexKey decodes a hex-encoded 256-bit key as found in configuration.
func ParseHexKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(b) != KeySize {
		return k, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random nonce and
// returns nonce || ciphertext || tag.
func Encrypt(plaintext []byte, key Key) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, NonceSize, NonceSize+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(randReader, out); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return aead.Seal(out, out[:NonceSize], plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Any tampering, truncation or key
// mismatch yields an error and no plaintext.
func Decrypt(blob []byte, key Key) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < NonceSize+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := blob[:NonceSize], blob[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// EncryptHex is Encrypt rendered as lowercase hex for storage and transport.
func EncryptHex(plaintext []byte, key Key) (string, error) {
	blob, err := Encrypt(plaintext, key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(blob), nil
}

// DecryptHex reverses EncryptHex.
func DecryptHex(blobHex string, key Key) ([]byte, error) {
	blob, err := hex.DecodeString(blobHex)
	if err != nil {
		return nil, ErrDecrypt
	}
	return Decrypt(blob, key)
}

// SealJSON serializes v to JSON and seals it with EncryptHex.
func SealJSON(v any, key Key) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return EncryptHex(plaintext, key)
}

// OpenJSON decrypts a SealJSON blob into v.
func OpenJSON(blobHex string, key Key, v any) error {
	plaintext, err := DecryptHex(blobHex, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
