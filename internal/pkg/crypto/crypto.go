// Package crypto 提供集成凭证（bot token）的静态加密能力
// 密文格式: hex(nonce) + ":" + hex(ciphertext)，AES-256-GCM
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidCiphertext 密文格式错误或解密失败
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Sealer 对称加解密器
type Sealer struct {
	key [32]byte
}

// NewSealer 从密钥来源字符串派生 AES-256 密钥
// keySource 为空时返回错误，禁止空密钥静默运行
func NewSealer(keySource string) (*Sealer, error) {
	if keySource == "" {
		return nil, errors.New("crypto key is required, set SYLLABI_CRYPTO_KEY")
	}
	return &Sealer{key: sha256.Sum256([]byte(keySource + ":syllabi-v1"))}, nil
}

// Seal 加密明文
func (s *Sealer) Seal(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

// Open 解密密文
func (s *Sealer) Open(sealed string) (string, error) {
	parts := strings.SplitN(sealed, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: missing nonce separator", ErrInvalidCiphertext)
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: bad nonce encoding", ErrInvalidCiphertext)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrInvalidCiphertext)
	}

	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length", ErrInvalidCiphertext)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return string(plaintext), nil
}

// Mask 返回脱敏后的密钥字符串，用于日志和 API 响应
func Mask(s string) string {
	if len(s) == 0 {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:3] + "********" + s[len(s)-3:]
}
