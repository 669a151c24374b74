package cardcodec

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactvault/internal/contacts/crypto"
	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/properties"
	"contactvault/internal/contacts/vcard"
	dErrors "contactvault/pkg/domain-errors"
)

func testKeys(t *testing.T) (crypto.KeyRing, crypto.KeyRing, crypto.Cryptor) {
	t.Helper()
	kr := crypto.NewSymmetricKeyRing("test-passphrase", "test-salt")
	return kr, kr, crypto.NewLocalCryptor()
}

func prop(f properties.Field, v string) properties.Property {
	return properties.Property{Field: f, Value: properties.Text(v)}
}

func TestSplitPartitions(t *testing.T) {
	props := []properties.Property{
		prop(properties.FieldVersion, "4.0"),
		prop(properties.FieldCategories, "friends"),
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "uid-1"),
		prop(properties.FieldEmail, "jane@example.com"),
		prop(properties.FieldTel, "+1555"),
		prop(properties.FieldNote, "secret"),
	}

	part := Split(props)

	assert.Equal(t, []properties.Property{
		prop(properties.FieldVersion, "4.0"),
		prop(properties.FieldCategories, "friends"),
	}, part.Clear)
	assert.Equal(t, []properties.Property{
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "uid-1"),
		prop(properties.FieldEmail, "jane@example.com"),
	}, part.Signed)
	assert.Equal(t, []properties.Property{
		prop(properties.FieldTel, "+1555"),
		prop(properties.FieldNote, "secret"),
	}, part.Encrypted)
}

func TestSplitSynthesizesUID(t *testing.T) {
	part := Split([]properties.Property{prop(properties.FieldFN, "Jane Roe")})

	uid, ok := properties.First(part.Signed, properties.FieldUID)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(uid.Value.String(), "proton-web-"))
	assert.Greater(t, len(uid.Value.String()), len("proton-web-"))
}

func TestSplitDerivesDisplayNameFromEmail(t *testing.T) {
	part := Split([]properties.Property{prop(properties.FieldEmail, "jane.roe@example.com")})

	fn, ok := properties.First(part.Signed, properties.FieldFN)
	require.True(t, ok)
	assert.Equal(t, "Jane Roe", fn.Value.String())
}

func TestSplitFallsBackToUnknownDisplayName(t *testing.T) {
	part := Split([]properties.Property{prop(properties.FieldNote, "no identity here")})

	fn, ok := properties.First(part.Signed, properties.FieldFN)
	require.True(t, ok)
	assert.Equal(t, "Unknown", fn.Value.String())
}

func TestEncodeCardShapes(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)
	props := []properties.Property{
		prop(properties.FieldCategories, "work"),
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "uid-1"),
		prop(properties.FieldNote, "secret"),
	}

	cards, err := Encode(context.Background(), props, recipient, signer, cryptor)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, models.CardClearText, cards[0].Type)
	assert.Contains(t, cards[0].Data, "CATEGORIES:work")
	assert.Empty(t, cards[0].Signature)

	assert.Equal(t, models.CardSigned, cards[1].Type)
	assert.Contains(t, cards[1].Data, "FN:Jane Roe")
	assert.Contains(t, cards[1].Data, "UID:uid-1")
	sig, err := base64.StdEncoding.DecodeString(cards[1].Signature)
	require.NoError(t, err)
	verified, err := cryptor.Verify(context.Background(), []byte(cards[1].Data), sig, signer)
	require.NoError(t, err)
	assert.True(t, verified)

	assert.Equal(t, models.CardEncryptedAndSigned, cards[2].Type)
	assert.NotContains(t, cards[2].Data, "secret")
	_, err = base64.StdEncoding.DecodeString(cards[2].Data)
	assert.NoError(t, err)
}

func TestEncodeAlwaysEmitsSignedCard(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)

	cards, err := Encode(context.Background(), nil, recipient, signer, cryptor)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, models.CardSigned, cards[0].Type)
	assert.Contains(t, cards[0].Data, "FN:Unknown")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)
	props := []properties.Property{
		prop(properties.FieldCategories, "friends"),
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "uid-1"),
		prop(properties.FieldEmail, "jane@example.com"),
		prop(properties.FieldTel, "+15551234567"),
		prop(properties.FieldNote, "met at the conference"),
	}

	cards, err := Encode(context.Background(), props, recipient, signer, cryptor)
	require.NoError(t, err)

	result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Empty(t, result.Errors)

	for _, want := range props {
		got, ok := properties.First(result.Properties, want.Field)
		require.True(t, ok, "missing %s", want.Field)
		assert.Equal(t, want.Value.String(), got.Value.String())
	}
}

func TestDecodeStripsStrayUIDFromEncryptedCard(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)

	// Old clients wrote the uid into the encrypted payload as well.
	plaintext := vcard.Serialize([]properties.Property{
		prop(properties.FieldUID, "stale-uid"),
		prop(properties.FieldNote, "secret"),
	})
	sealed, err := cryptor.Encrypt(context.Background(), []byte(plaintext), recipient, signer)
	require.NoError(t, err)

	signedData := vcard.Serialize([]properties.Property{
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "authoritative-uid"),
	})
	signature, err := cryptor.Sign(context.Background(), []byte(signedData), signer)
	require.NoError(t, err)

	cards := []models.Card{
		{
			Type:      models.CardSigned,
			Data:      signedData,
			Signature: base64.StdEncoding.EncodeToString(signature),
		},
		{
			Type:      models.CardEncryptedAndSigned,
			Data:      base64.StdEncoding.EncodeToString(sealed.Ciphertext),
			Signature: base64.StdEncoding.EncodeToString(sealed.Signature),
		},
	}

	result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
	require.NoError(t, err)
	assert.True(t, result.Verified)

	uids := properties.ByField(result.Properties, properties.FieldUID)
	require.Len(t, uids, 1)
	assert.Equal(t, "authoritative-uid", uids[0].Value.String())

	note, ok := properties.First(result.Properties, properties.FieldNote)
	require.True(t, ok)
	assert.Equal(t, "secret", note.Value.String())
}

func TestDecodeSignatureMismatchKeepsProperties(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)
	other := crypto.NewSymmetricKeyRing("someone-else", "test-salt")

	signedData := vcard.Serialize([]properties.Property{
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "uid-1"),
	})
	wrongSig, err := cryptor.Sign(context.Background(), []byte(signedData), other)
	require.NoError(t, err)

	cards := []models.Card{{
		Type:      models.CardSigned,
		Data:      signedData,
		Signature: base64.StdEncoding.EncodeToString(wrongSig),
	}}

	result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
	require.NoError(t, err)

	assert.False(t, result.Verified)
	require.Len(t, result.Errors, 1)
	assert.True(t, dErrors.HasCode(result.Errors[0], dErrors.CodeSignatureNotVerified))

	fn, ok := properties.First(result.Properties, properties.FieldFN)
	require.True(t, ok)
	assert.Equal(t, "Jane Roe", fn.Value.String())
}

func TestDecodeUnreadableCards(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)

	t.Run("garbage ciphertext base64", func(t *testing.T) {
		cards := []models.Card{{
			Type:      models.CardEncryptedAndSigned,
			Data:      "not base64!!!",
			Signature: base64.StdEncoding.EncodeToString([]byte("sig")),
		}}
		result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.True(t, dErrors.HasCode(result.Errors[0], dErrors.CodeFailToRead))
		assert.Empty(t, result.Properties)
	})

	t.Run("undecryptable ciphertext", func(t *testing.T) {
		junk := make([]byte, 64)
		cards := []models.Card{{
			Type:      models.CardEncryptedAndSigned,
			Data:      base64.StdEncoding.EncodeToString(junk),
			Signature: base64.StdEncoding.EncodeToString([]byte("sig")),
		}}
		result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.True(t, dErrors.HasCode(result.Errors[0], dErrors.CodeFailToDecrypt))
	})

	t.Run("unknown card type", func(t *testing.T) {
		cards := []models.Card{{Type: models.CardType(42), Data: "whatever"}}
		result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.True(t, dErrors.HasCode(result.Errors[0], dErrors.CodeFailToRead))
	})
}

func TestDecodeSkipsBrokenCardKeepsRest(t *testing.T) {
	recipient, signer, cryptor := testKeys(t)

	signedData := vcard.Serialize([]properties.Property{
		prop(properties.FieldFN, "Jane Roe"),
		prop(properties.FieldUID, "uid-1"),
	})
	signature, err := cryptor.Sign(context.Background(), []byte(signedData), signer)
	require.NoError(t, err)

	cards := []models.Card{
		{
			Type:      models.CardEncryptedAndSigned,
			Data:      "not base64!!!",
			Signature: "also not base64!!!",
		},
		{
			Type:      models.CardSigned,
			Data:      signedData,
			Signature: base64.StdEncoding.EncodeToString(signature),
		},
	}

	result, err := Decode(context.Background(), cards, recipient, signer, cryptor)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	require.Len(t, result.Errors, 1)

	fn, ok := properties.First(result.Properties, properties.FieldFN)
	require.True(t, ok)
	assert.Equal(t, "Jane Roe", fn.Value.String())
}
