package push

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestKey sinh cặp RSA key cho test, trả về private key và public key
// dưới cả hai dạng client chấp nhận (base64 DER và PEM)
func newTestKey(t *testing.T) (*rsa.PrivateKey, string, string) {
	t.Helper()
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	require.NoError(t, err)

	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return private, base64.StdEncoding.EncodeToString(der), pemStr
}

func TestParsePublicKey(t *testing.T) {
	private, b64, pemStr := newTestKey(t)

	t.Run("base64 DER", func(t *testing.T) {
		key, err := ParsePublicKey(b64)
		require.NoError(t, err)
		assert.Equal(t, private.PublicKey.N, key.N)
	})

	t.Run("base64 có xuống dòng", func(t *testing.T) {
		wrapped := b64[:40] + "\n" + b64[40:80] + "\r\n  " + b64[80:]
		key, err := ParsePublicKey(wrapped)
		require.NoError(t, err)
		assert.Equal(t, private.PublicKey.N, key.N)
	})

	t.Run("PEM", func(t *testing.T) {
		key, err := ParsePublicKey(pemStr)
		require.NoError(t, err)
		assert.Equal(t, private.PublicKey.N, key.N)
	})

	t.Run("rỗng", func(t *testing.T) {
		_, err := ParsePublicKey("   ")
		assert.Error(t, err)
	})

	t.Run("không phải base64", func(t *testing.T) {
		_, err := ParsePublicKey("not-a-key!!!")
		assert.Error(t, err)
	})
}

// Mã hóa bằng public key rồi giải mã bằng private key phải ra đúng
// chuỗi "timestamp:password"
func TestEncryptCredentialRoundTrip(t *testing.T) {
	private, b64, _ := newTestKey(t)
	key, err := ParsePublicKey(b64)
	require.NoError(t, err)

	encrypted, err := EncryptCredential(key, "s3cret", 1735689600000)
	require.NoError(t, err)

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)

	plaintext, err := rsa.DecryptPKCS1v15(nil, private, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "1735689600000:s3cret", string(plaintext))
}

// Hai lần mã hóa cùng input phải cho ciphertext khác nhau (PKCS1v15 có padding ngẫu nhiên)
func TestEncryptCredentialNonDeterministic(t *testing.T) {
	_, b64, _ := newTestKey(t)
	key, err := ParsePublicKey(b64)
	require.NoError(t, err)

	first, err := EncryptCredential(key, "pw", 1)
	require.NoError(t, err)
	second, err := EncryptCredential(key, "pw", 1)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStripWhitespace(t *testing.T) {
	assert.Equal(t, "abc", stripWhitespace(" a b\tc\n"))
	assert.False(t, strings.ContainsAny(stripWhitespace("x\r\ny z"), " \t\r\n"))
}
