package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// XChaChaProvider is the default AEADProvider, backed by
// golang.org/x/crypto/chacha20poly1305's XChaCha20-Poly1305 construction
// (24-byte nonce, IND-CCA2 + INT-CTXT).
type XChaChaProvider struct{}

func (XChaChaProvider) NonceSize() int { return chacha20poly1305.NonceSizeX }
func (XChaChaProvider) KeySize() int   { return chacha20poly1305.KeySize }

func (XChaChaProvider) Seal(dst, key, nonce, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new xchacha20poly1305: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("crypto: nonce must be %d bytes, got %d", aead.NonceSize(), len(nonce))
	}
	return aead.Seal(dst, nonce, plaintext, aad), nil
}

func (XChaChaProvider) Open(dst, key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new xchacha20poly1305: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("crypto: nonce must be %d bytes, got %d", aead.NonceSize(), len(nonce))
	}
	out, err := aead.Open(dst, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("crypto: decrypt: %w", err)
	}
	return out, nil
}
