// Package cardcodec partitions canonical properties into clear, signed, and
// encrypted card payloads, drives the crypto collaborator, and reassembles
// properties from stored cards.
package cardcodec

import (
	"context"
	"encoding/base64"
	"regexp"

	"github.com/google/uuid"

	"contactvault/internal/contacts/crypto"
	"contactvault/internal/contacts/merge"
	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/properties"
	"contactvault/internal/contacts/vcard"
	dErrors "contactvault/pkg/domain-errors"
	"contactvault/pkg/email"
)

// Partition groups properties by protection level.
type Partition struct {
	Clear     []properties.Property
	Signed    []properties.Property
	Encrypted []properties.Property
}

// partitionOf routes one field to its protection level. Clear fields are
// needed by the store without any keys; signed fields are what addressing and
// key verification need before decryption (authenticity without
// confidentiality); everything else is encrypted and signed.
func partitionOf(f properties.Field) models.CardType {
	switch f {
	case properties.FieldVersion, properties.FieldProdID, properties.FieldCategories:
		return models.CardClearText
	case properties.FieldFN, properties.FieldUID, properties.FieldEmail, properties.FieldKey,
		properties.FieldMIMEType, properties.FieldEncrypt, properties.FieldSign,
		properties.FieldScheme, properties.FieldTLS:
		return models.CardSigned
	default:
		return models.CardEncryptedAndSigned
	}
}

// Split partitions properties and guarantees the signed partition carries a
// uid and an fn, synthesizing them when the input has neither, so every
// stored contact stays addressable without decryption.
func Split(props []properties.Property) Partition {
	var part Partition
	for _, p := range props {
		switch partitionOf(p.Field) {
		case models.CardClearText:
			part.Clear = append(part.Clear, p)
		case models.CardSigned:
			part.Signed = append(part.Signed, p)
		default:
			part.Encrypted = append(part.Encrypted, p)
		}
	}

	if _, ok := properties.First(part.Signed, properties.FieldUID); !ok {
		part.Signed = append(part.Signed, properties.Property{
			Field: properties.FieldUID,
			Value: properties.Text("proton-web-" + uuid.NewString()),
		})
	}
	if _, ok := properties.First(part.Signed, properties.FieldFN); !ok {
		part.Signed = append(part.Signed, properties.Property{
			Field: properties.FieldFN,
			Value: properties.Text(defaultDisplayName(part.Signed)),
		})
	}
	return part
}

// defaultDisplayName derives a display name from the most preferred email,
// falling back to a fixed default.
func defaultDisplayName(signed []properties.Property) string {
	if p, ok := properties.First(signed, properties.FieldEmail); ok {
		first, last := email.DeriveNameFromEmail(p.Value.String())
		if first == last {
			return first
		}
		return first + " " + last
	}
	return "Unknown"
}

// Encode splits properties and produces the stored cards: clear as-is,
// signed with a detached signature, encrypted sealed and signed. Empty
// partitions produce no card; the signed partition is never empty because
// Split synthesizes uid and fn.
func Encode(ctx context.Context, props []properties.Property, recipient, signer crypto.KeyRing, cryptor crypto.Cryptor) ([]models.Card, error) {
	part := Split(props)
	var cards []models.Card

	if len(part.Clear) > 0 {
		cards = append(cards, models.Card{
			Type: models.CardClearText,
			Data: vcard.Serialize(part.Clear),
		})
	}

	signedData := vcard.Serialize(part.Signed)
	signature, err := cryptor.Sign(ctx, []byte(signedData), signer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign card")
	}
	cards = append(cards, models.Card{
		Type:      models.CardSigned,
		Data:      signedData,
		Signature: base64.StdEncoding.EncodeToString(signature),
	})

	if len(part.Encrypted) > 0 {
		plaintext := vcard.Serialize(part.Encrypted)
		sealed, err := cryptor.Encrypt(ctx, []byte(plaintext), recipient, signer)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encrypt card")
		}
		cards = append(cards, models.Card{
			Type:      models.CardEncryptedAndSigned,
			Data:      base64.StdEncoding.EncodeToString(sealed.Ciphertext),
			Signature: base64.StdEncoding.EncodeToString(sealed.Signature),
		})
	}

	return cards, nil
}

// DecodeResult carries the reassembled properties of one contact along with
// per-card failures. Properties recovered from a card whose signature did not
// verify are still included, with Verified=false and a CodeSignatureNotVerified
// entry in Errors; cards that could not be read or decrypted contribute only
// an error.
type DecodeResult struct {
	Properties []properties.Property
	Verified   bool
	Errors     []error
}

// strayUID matches a UID line accidentally written into encrypted payloads
// by old clients. It is stripped before parsing; the signed card's uid is the
// authoritative one.
var strayUID = regexp.MustCompile(`(?m)^UID:[^\r\n]*\r?\n`)

// Decode reverses Encode for every card of a contact. Per-card property
// lists are folded with the cardinality-aware merge rather than concatenated,
// since partitions may carry overlapping single-instance fields.
func Decode(ctx context.Context, cards []models.Card, recipient, signer crypto.KeyRing, cryptor crypto.Cryptor) (DecodeResult, error) {
	result := DecodeResult{Verified: true}
	var lists [][]properties.Property

	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		props, verified, err := decodeCard(ctx, card, recipient, signer, cryptor)
		if err != nil {
			result.Errors = append(result.Errors, err)
			if !dErrors.HasCode(err, dErrors.CodeSignatureNotVerified) {
				continue
			}
		}
		if !verified {
			result.Verified = false
		}
		if props != nil {
			lists = append(lists, props)
		}
	}

	result.Properties = merge.Merge(lists)
	return result, nil
}

func decodeCard(ctx context.Context, card models.Card, recipient, signer crypto.KeyRing, cryptor crypto.Cryptor) ([]properties.Property, bool, error) {
	switch card.Type {
	case models.CardClearText:
		props, err := vcard.Parse(card.Data)
		if err != nil {
			return nil, true, dErrors.Wrap(err, dErrors.CodeFailToRead, "unreadable clear card")
		}
		return props, true, nil

	case models.CardSigned:
		signature, err := base64.StdEncoding.DecodeString(card.Signature)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToRead, "unreadable card signature")
		}
		props, err := vcard.Parse(card.Data)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToRead, "unreadable signed card")
		}
		verified, err := cryptor.Verify(ctx, []byte(card.Data), signature, signer)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToRead, "verify signed card")
		}
		if !verified {
			return props, false, dErrors.New(dErrors.CodeSignatureNotVerified, "signed card signature mismatch")
		}
		return props, true, nil

	case models.CardEncryptedAndSigned:
		ciphertext, err := base64.StdEncoding.DecodeString(card.Data)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToRead, "unreadable card ciphertext")
		}
		signature, err := base64.StdEncoding.DecodeString(card.Signature)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToRead, "unreadable card signature")
		}

		opened, err := cryptor.Decrypt(ctx, ciphertext, signature, recipient, signer)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeFailToRead) || dErrors.HasCode(err, dErrors.CodeFailToDecrypt) {
				return nil, false, err
			}
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToDecrypt, "open encrypted card")
		}

		plaintext := strayUID.ReplaceAllString(string(opened.Plaintext), "")
		props, err := vcard.Parse(plaintext)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeFailToRead, "unreadable decrypted card")
		}
		if !opened.Verified {
			return props, false, dErrors.New(dErrors.CodeSignatureNotVerified, "encrypted card signature mismatch")
		}
		return props, true, nil

	default:
		return nil, false, dErrors.Newf(dErrors.CodeFailToRead, "unknown card type %d", card.Type)
	}
}
