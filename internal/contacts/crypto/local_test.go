package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "contactvault/pkg/domain-errors"
)

func TestNewSymmetricKeyRingIsDeterministic(t *testing.T) {
	a := NewSymmetricKeyRing("passphrase", "salt")
	b := NewSymmetricKeyRing("passphrase", "salt")
	c := NewSymmetricKeyRing("passphrase", "other-salt")

	assert.Equal(t, a.KeyID(), b.KeyID())
	assert.NotEqual(t, a.KeyID(), c.KeyID())
	assert.NotEmpty(t, a.KeyID())
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	cryptor := NewLocalCryptor()
	plaintext := []byte("BEGIN:VCARD\r\nNOTE:secret\r\nEND:VCARD\r\n")

	sealed, err := cryptor.Encrypt(context.Background(), plaintext, kr, kr)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed.Ciphertext), "secret")

	opened, err := cryptor.Decrypt(context.Background(), sealed.Ciphertext, sealed.Signature, kr, kr)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened.Plaintext)
	assert.True(t, opened.Verified)
}

func TestEncryptProducesFreshNonces(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	cryptor := NewLocalCryptor()

	a, err := cryptor.Encrypt(context.Background(), []byte("same input"), kr, kr)
	require.NoError(t, err)
	b, err := cryptor.Encrypt(context.Background(), []byte("same input"), kr, kr)
	require.NoError(t, err)

	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	cryptor := NewLocalCryptor()

	sealed, err := cryptor.Encrypt(context.Background(), []byte("payload"), kr, kr)
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed.Ciphertext...)
	tampered[len(tampered)-1] ^= 0xff

	_, err = cryptor.Decrypt(context.Background(), tampered, sealed.Signature, kr, kr)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeFailToDecrypt))
}

func TestDecryptShortCiphertext(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	cryptor := NewLocalCryptor()

	_, err := cryptor.Decrypt(context.Background(), []byte("too short"), nil, kr, kr)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeFailToRead))
}

func TestDecryptWithWrongKey(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	other := NewSymmetricKeyRing("different", "salt")
	cryptor := NewLocalCryptor()

	sealed, err := cryptor.Encrypt(context.Background(), []byte("payload"), kr, kr)
	require.NoError(t, err)

	_, err = cryptor.Decrypt(context.Background(), sealed.Ciphertext, sealed.Signature, other, other)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeFailToDecrypt))
}

func TestWrongSignerLeavesDataUnverified(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	other := NewSymmetricKeyRing("different", "salt")
	cryptor := NewLocalCryptor()

	sealed, err := cryptor.Encrypt(context.Background(), []byte("payload"), kr, other)
	require.NoError(t, err)

	// Recipient key opens the payload but the expected signer did not sign it.
	opened, err := cryptor.Decrypt(context.Background(), sealed.Ciphertext, sealed.Signature, kr, kr)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), opened.Plaintext)
	assert.False(t, opened.Verified)
}

func TestSignAndVerify(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	cryptor := NewLocalCryptor()

	sig, err := cryptor.Sign(context.Background(), []byte("data"), kr)
	require.NoError(t, err)

	ok, err := cryptor.Verify(context.Background(), []byte("data"), sig, kr)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cryptor.Verify(context.Background(), []byte("other data"), sig, kr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRejectsForeignKeyRing(t *testing.T) {
	cryptor := NewLocalCryptor()

	_, err := cryptor.Sign(context.Background(), []byte("data"), fakeKeyRing{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestHonorsCancelledContext(t *testing.T) {
	kr := NewSymmetricKeyRing("passphrase", "salt")
	cryptor := NewLocalCryptor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cryptor.Encrypt(ctx, []byte("data"), kr, kr)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeKeyRing struct{}

func (fakeKeyRing) KeyID() string { return "fake" }
