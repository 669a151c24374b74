// Package crypto defines the encryption collaborator used by the card codec.
// The codec only depends on the Cryptor interface; the default implementation
// here is a symmetric-keyring stand-in (argon2id key derivation, XChaCha20-
// Poly1305 sealing, HMAC-SHA256 detached signatures), not an OpenPGP engine.
package crypto

import "context"

// KeyRing is an opaque handle to key material understood by a Cryptor.
type KeyRing interface {
	// KeyID identifies the keyring for logging; never key material.
	KeyID() string
}

// EncryptResult carries a sealed payload with its detached signature.
type EncryptResult struct {
	Ciphertext []byte
	Signature  []byte
}

// DecryptResult carries an opened payload and whether its signature checked
// out. Unverified data is still returned so callers can surface it tagged as
// untrusted.
type DecryptResult struct {
	Plaintext []byte
	Verified  bool
}

// Cryptor is the external crypto capability: sealing, opening, and detached
// signatures. Implementations may be slow (remote keys, hardware tokens), so
// every operation takes a context.
type Cryptor interface {
	Encrypt(ctx context.Context, plaintext []byte, recipient, signer KeyRing) (EncryptResult, error)
	Decrypt(ctx context.Context, ciphertext, signature []byte, recipient, signer KeyRing) (DecryptResult, error)
	Sign(ctx context.Context, plaintext []byte, signer KeyRing) ([]byte, error)
	Verify(ctx context.Context, plaintext, signature []byte, signer KeyRing) (bool, error)
}
