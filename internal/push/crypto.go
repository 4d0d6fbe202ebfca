package push

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
)

// ParsePublicKey đọc RSA public key từ chuỗi cấu hình. Chấp nhận hai dạng:
// PEM ("-----BEGIN PUBLIC KEY-----") hoặc base64 DER trần (PKIX) — dạng
// các hệ thống đích thường phát cho client.
func ParsePublicKey(keyData string) (*rsa.PublicKey, error) {
	keyData = strings.TrimSpace(keyData)
	if keyData == "" {
		return nil, fmt.Errorf("public key rỗng")
	}

	var der []byte
	if strings.Contains(keyData, "BEGIN") {
		block, _ := pem.Decode([]byte(keyData))
		if block == nil {
			return nil, fmt.Errorf("không decode được PEM block")
		}
		der = block.Bytes
	} else {
		decoded, err := base64.StdEncoding.DecodeString(stripWhitespace(keyData))
		if err != nil {
			return nil, fmt.Errorf("public key không phải base64 hợp lệ: %w", err)
		}
		der = decoded
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("không parse được public key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key không phải RSA")
	}
	return rsaKey, nil
}

// EncryptCredential mã hóa chuỗi "timestamp:password" bằng RSA PKCS1v15
// rồi encode base64. Môi trường đích dùng timestamp để chặn replay.
//
// Parameters:
//   - key: RSA public key của môi trường đích
//   - password: password gốc
//   - timestamp: thời điểm ký (epoch millis)
//
// Returns:
//   - string: ciphertext base64 đặt vào field password của request signin
//   - error: lỗi mã hóa (password quá dài so với key size...)
func EncryptCredential(key *rsa.PublicKey, password string, timestamp int64) (string, error) {
	plaintext := fmt.Sprintf("%d:%s", timestamp, password)
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, key, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("không mã hóa được credential: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// stripWhitespace loại bỏ xuống dòng và khoảng trắng trong chuỗi base64
// (key copy từ file PEM thường bị ngắt dòng)
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
