package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_KnownAnswer(t *testing.T) {
	svc := NewHMACSignatureService()
	secret := "whsec_9f8e7d6c5b4a"
	payload := []byte(`{"event":"invoice.paid","timestamp":"2026-01-15T09:30:00Z","data":{"number":"INV-0042","total":920000}}`)

	// Reference digest computed independently (openssl dgst -sha256 -hmac).
	expected := "100ec87b224c4650b8283a421ec86c0a54c52b48f5b286ce58ed1a3957a53872"
	assert.Equal(t, expected, svc.Sign(secret, payload))
}

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()
	secret := "whsec_test_key"
	payload := []byte(`{"event":"quote.accepted","data":{}}`)

	signature := svc.Sign(secret, payload)

	// Should be lowercase hex
	assert.Regexp(t, `^[0-9a-f]{64}$`, signature, "signature should be 64-char lowercase hex (SHA-256)")

	// Verify with correct key
	assert.True(t, svc.Verify(secret, payload, signature))
}

func TestHMACSignatureService_VerifyFails_WrongKey(t *testing.T) {
	svc := NewHMACSignatureService()
	payload := []byte("test payload")

	signature := svc.Sign("correct-key", payload)
	assert.False(t, svc.Verify("wrong-key", payload, signature))
}

func TestHMACSignatureService_VerifyFails_WrongPayload(t *testing.T) {
	svc := NewHMACSignatureService()
	secret := "my-key"

	signature := svc.Sign(secret, []byte("original payload"))
	assert.False(t, svc.Verify(secret, []byte("tampered payload"), signature))
}

func TestHMACSignatureService_VerifyFails_WrongSignature(t *testing.T) {
	svc := NewHMACSignatureService()
	assert.False(t, svc.Verify("key", []byte("payload"), "invalidsignature"))
}

func TestHMACSignatureService_DeterministicSign(t *testing.T) {
	svc := NewHMACSignatureService()

	sig1 := svc.Sign("key", []byte("data"))
	sig2 := svc.Sign("key", []byte("data"))

	assert.Equal(t, sig1, sig2, "same key+payload should produce same signature")
}
