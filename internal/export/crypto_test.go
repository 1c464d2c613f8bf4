package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibook/digibook/internal/common"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"version":3,"accounts":[]}`)

	sealed, err := Encrypt(plaintext, "hunter2")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "accounts")

	var envelope encryptedEnvelope
	require.NoError(t, json.Unmarshal(sealed, &envelope))
	assert.True(t, envelope.Encrypted)
	assert.Equal(t, kdfAlgorithm, envelope.KDF.Algorithm)
	assert.Equal(t, cipherAlgorithm, envelope.Cipher.Algorithm)
	assert.Equal(t, kdfIterations, envelope.KDF.Iterations)

	opened, err := Decrypt(sealed, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestEncryptRejectsEmptyPassword(t *testing.T) {
	_, err := Encrypt([]byte("x"), "")
	assert.Error(t, err)
}

func TestDecryptWrongPassword(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "correct")
	require.NoError(t, err)

	_, err = Decrypt(sealed, "wrong")
	assert.ErrorIs(t, err, common.ErrBadPassword)
}

func TestDecryptTamperedPayload(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "correct")
	require.NoError(t, err)

	var envelope encryptedEnvelope
	require.NoError(t, json.Unmarshal(sealed, &envelope))
	envelope.Payload = "AAAA" + envelope.Payload[4:]
	tampered, err := json.Marshal(envelope)
	require.NoError(t, err)

	_, err = Decrypt(tampered, "correct")
	assert.ErrorIs(t, err, common.ErrBadPassword)
}

func TestDecryptMalformedEnvelope(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), "correct")
	require.NoError(t, err)
	var envelope encryptedEnvelope
	require.NoError(t, json.Unmarshal(sealed, &envelope))

	reseal := func(mutate func(e *encryptedEnvelope)) []byte {
		e := envelope
		mutate(&e)
		data, err := json.Marshal(e)
		require.NoError(t, err)
		return data
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("plain text")},
		{"not encrypted", reseal(func(e *encryptedEnvelope) { e.Encrypted = false })},
		{"unknown kdf", reseal(func(e *encryptedEnvelope) { e.KDF.Algorithm = "scrypt" })},
		{"weak iterations", reseal(func(e *encryptedEnvelope) { e.KDF.Iterations = 1000 })},
		{"bad salt encoding", reseal(func(e *encryptedEnvelope) { e.KDF.Salt = "!!" })},
		{"bad nonce length", reseal(func(e *encryptedEnvelope) { e.Cipher.IV = "AAAA" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.data, "correct")
			assert.ErrorIs(t, err, common.ErrMalformed)
		})
	}
}
