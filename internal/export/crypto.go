package export

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/digibook/digibook/internal/common"
)

const (
	kdfAlgorithm    = "pbkdf2-sha256"
	cipherAlgorithm = "aes-256-gcm"
	kdfIterations   = 100000
	kdfKeyLength    = 32
	kdfSaltLength   = 16
)

// encryptedEnvelope is the on-disk form of an encrypted export.
type encryptedEnvelope struct {
	Payload   string       `json:"payload"`
	KDF       kdfParams    `json:"kdf"`
	Cipher    cipherParams `json:"cipher"`
	Version   int          `json:"version"`
	Encrypted bool         `json:"encrypted"`
}

type kdfParams struct {
	Algorithm  string `json:"algo"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
}

type cipherParams struct {
	Algorithm string `json:"algo"`
	IV        string `json:"iv"`
}

// Encrypt wraps a JSON export in a password-protected envelope. The key is
// derived with PBKDF2-SHA256 and the payload sealed with AES-256-GCM.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("password must not be empty")
	}

	salt := make([]byte, kdfSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, kdfIterations, kdfKeyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}
	iv := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)

	envelope := encryptedEnvelope{
		Encrypted: true,
		Version:   1,
		Payload:   base64.StdEncoding.EncodeToString(sealed),
		KDF: kdfParams{
			Algorithm:  kdfAlgorithm,
			Salt:       base64.StdEncoding.EncodeToString(salt),
			Iterations: kdfIterations,
		},
		Cipher: cipherParams{
			Algorithm: cipherAlgorithm,
			IV:        base64.StdEncoding.EncodeToString(iv),
		},
	}
	return json.MarshalIndent(envelope, "", "  ")
}

// Decrypt opens an encrypted export envelope. A structurally broken
// envelope is Malformed; an authentication failure is BadPassword.
func Decrypt(data []byte, password string) ([]byte, error) {
	var envelope encryptedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: not an encrypted export: %v", common.ErrMalformed, err)
	}
	if !envelope.Encrypted {
		return nil, fmt.Errorf("%w: payload is not encrypted", common.ErrMalformed)
	}
	if envelope.KDF.Algorithm != kdfAlgorithm || envelope.Cipher.Algorithm != cipherAlgorithm {
		return nil, fmt.Errorf("%w: unsupported algorithms %q/%q",
			common.ErrMalformed, envelope.KDF.Algorithm, envelope.Cipher.Algorithm)
	}
	if envelope.KDF.Iterations < kdfIterations {
		return nil, fmt.Errorf("%w: iteration count %d below minimum %d",
			common.ErrMalformed, envelope.KDF.Iterations, kdfIterations)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.KDF.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt encoding", common.ErrMalformed)
	}
	iv, err := base64.StdEncoding.DecodeString(envelope.Cipher.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce encoding", common.ErrMalformed)
	}
	sealed, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad payload encoding", common.ErrMalformed)
	}

	key := pbkdf2.Key([]byte(password), salt, envelope.KDF.Iterations, kdfKeyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}
	if len(iv) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", common.ErrMalformed, len(iv))
	}

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		// GCM cannot distinguish a wrong key from tampering; both
		// surface as a password failure.
		return nil, fmt.Errorf("%w: decryption failed", common.ErrBadPassword)
	}
	return plaintext, nil
}
