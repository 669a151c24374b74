package crypto

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	dErrors "contactvault/pkg/domain-errors"
)

// argon2id parameters for passphrase-derived keyrings.
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// SymmetricKeyRing derives a sealing key and a signing key from a passphrase.
type SymmetricKeyRing struct {
	sealKey []byte
	macKey  []byte
	keyID   string
}

// NewSymmetricKeyRing derives a keyring from a passphrase and salt. The salt
// must be stable per user so the same passphrase reproduces the same keys.
func NewSymmetricKeyRing(passphrase, salt string) *SymmetricKeyRing {
	material := argon2.IDKey([]byte(passphrase), []byte(salt), kdfTime, kdfMemory, kdfThreads, 64)
	idSum := sha256.Sum256(material)
	return &SymmetricKeyRing{
		sealKey: material[:32],
		macKey:  material[32:],
		keyID:   hex.EncodeToString(idSum[:8]),
	}
}

// KeyID implements KeyRing.
func (k *SymmetricKeyRing) KeyID() string { return k.keyID }

// LocalCryptor implements Cryptor with XChaCha20-Poly1305 sealing and
// HMAC-SHA256 detached signatures over SymmetricKeyRings.
type LocalCryptor struct{}

// NewLocalCryptor returns the default in-process crypto implementation.
func NewLocalCryptor() *LocalCryptor { return &LocalCryptor{} }

func symmetric(kr KeyRing) (*SymmetricKeyRing, error) {
	s, ok := kr.(*SymmetricKeyRing)
	if !ok || s == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "keyring is not a symmetric keyring")
	}
	return s, nil
}

// Encrypt seals plaintext for the recipient and signs it with the signer key.
func (c *LocalCryptor) Encrypt(ctx context.Context, plaintext []byte, recipient, signer KeyRing) (EncryptResult, error) {
	if err := ctx.Err(); err != nil {
		return EncryptResult{}, err
	}
	rec, err := symmetric(recipient)
	if err != nil {
		return EncryptResult{}, err
	}

	aead, err := chacha20poly1305.NewX(rec.sealKey)
	if err != nil {
		return EncryptResult{}, fmt.Errorf("init aead: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return EncryptResult{}, fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := aead.Seal(nonce, nonce, plaintext, nil)

	signature, err := c.Sign(ctx, plaintext, signer)
	if err != nil {
		return EncryptResult{}, err
	}
	return EncryptResult{Ciphertext: ciphertext, Signature: signature}, nil
}

// Decrypt opens a sealed payload and checks its detached signature. A payload
// that opens but fails verification is still returned with Verified=false.
func (c *LocalCryptor) Decrypt(ctx context.Context, ciphertext, signature []byte, recipient, signer KeyRing) (DecryptResult, error) {
	if err := ctx.Err(); err != nil {
		return DecryptResult{}, err
	}
	rec, err := symmetric(recipient)
	if err != nil {
		return DecryptResult{}, err
	}

	if len(ciphertext) < chacha20poly1305.NonceSizeX {
		return DecryptResult{}, dErrors.New(dErrors.CodeFailToRead, "ciphertext shorter than nonce")
	}
	aead, err := chacha20poly1305.NewX(rec.sealKey)
	if err != nil {
		return DecryptResult{}, fmt.Errorf("init aead: %w", err)
	}

	nonce, sealed := ciphertext[:chacha20poly1305.NonceSizeX], ciphertext[chacha20poly1305.NonceSizeX:]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return DecryptResult{}, dErrors.Wrap(err, dErrors.CodeFailToDecrypt, "cannot open payload")
	}

	verified, err := c.Verify(ctx, plaintext, signature, signer)
	if err != nil {
		return DecryptResult{}, err
	}
	return DecryptResult{Plaintext: plaintext, Verified: verified}, nil
}

// Sign produces a detached HMAC-SHA256 signature.
func (c *LocalCryptor) Sign(ctx context.Context, plaintext []byte, signer KeyRing) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := symmetric(signer)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, sig.macKey)
	mac.Write(plaintext)
	return mac.Sum(nil), nil
}

// Verify checks a detached signature. A wrong signature is not an error, just
// unverified data.
func (c *LocalCryptor) Verify(ctx context.Context, plaintext, signature []byte, signer KeyRing) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sig, err := symmetric(signer)
	if err != nil {
		return false, err
	}
	mac := hmac.New(sha256.New, sig.macKey)
	mac.Write(plaintext)
	return hmac.Equal(mac.Sum(nil), signature), nil
}
