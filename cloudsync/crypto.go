package cloudsync

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// Envelope layout: base64(salt | nonce | AES-256-GCM ciphertext).
const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 100000
)

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plain with a key derived from passphrase and a fresh salt.
func Encrypt(plain []byte, passphrase string) (string, error) {
	buf := make([]byte, saltSize+nonceSize, saltSize+nonceSize+len(plain)+16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "cloudsync: read random salt")
	}
	salt, nonce := buf[:saltSize], buf[saltSize:]

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return "", errors.Wrap(err, "cloudsync: init cipher")
	}
	sealed := gcm.Seal(buf, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. Any failure, including a
// wrong passphrase, is reported as ErrDecrypt.
func Decrypt(encoded, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	if len(raw) < saltSize+nonceSize {
		return nil, ErrDecrypt
	}
	salt, nonce, ct := raw[:saltSize], raw[saltSize:saltSize+nonceSize], raw[saltSize+nonceSize:]

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, errors.Wrap(err, "cloudsync: init cipher")
	}
	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
