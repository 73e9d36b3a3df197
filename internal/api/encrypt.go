// ABOUTME: Password encryption with the challenge's RSA public key
// ABOUTME: One-directional, single-use; plaintext never crosses the network

package api

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// ErrNoPublicKey means no public key has been loaded for this login attempt.
// Callers must treat this as "cannot submit yet" and keep the plaintext
// local; it is never a reason to send the password unencrypted.
var ErrNoPublicKey = errors.New("no public key available")

// EncryptPassword encrypts the password with the PEM-encoded RSA public key
// from the current challenge and returns the base64 ciphertext the login
// endpoint expects. The server generates a fresh 2048-bit key per challenge
// and decrypts with PKCS#1 v1.5, matching the scheme here.
func EncryptPassword(publicKeyPEM, password string) (string, error) {
	if publicKeyPEM == "" {
		return "", ErrNoPublicKey
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return "", fmt.Errorf("public key is not valid PEM")
	}

	var pub *rsa.PublicKey
	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("parsing PKCS#1 public key: %w", err)
		}
		pub = key
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("parsing PKIX public key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return "", fmt.Errorf("public key is not RSA")
		}
		pub = rsaKey
	default:
		return "", fmt.Errorf("unsupported PEM block %q", block.Type)
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	if err != nil {
		return "", fmt.Errorf("encrypting password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
