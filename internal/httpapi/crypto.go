package httpapi

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// DefaultKeyBits is the size of the RSA key generated at startup.
const DefaultKeyBits = 2048

// ErrDecrypt is returned for payloads that are not valid base64 RSA-OAEP
// ciphertext for the server key.
var ErrDecrypt = errors.New("cannot decrypt payload")

// KeyPair is the RSA key clients use to encrypt credentials in transit.
// It lives only in memory and changes on every restart.
type KeyPair struct {
	private   *rsa.PrivateKey
	publicPEM string
}

// NewKeyPair generates a fresh key of the given size.
func NewKeyPair(bits int) (*KeyPair, error) {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate RSA key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return &KeyPair{private: priv, publicPEM: string(block)}, nil
}

// PublicKeyPEM returns the PKIX public key in PEM form.
func (k *KeyPair) PublicKeyPEM() string {
	return k.publicPEM
}

// Decrypt decodes standard base64 and decrypts it with RSA-OAEP(SHA-256).
func (k *KeyPair) Decrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	plain, err := rsa.DecryptOAEP(sha256.New(), nil, k.private, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return plain, nil
}
