package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func testConfig() Config {
	return Config{
		StoreName:    "teststore123",
		SharedSecret: "s3cr3t",
		PaymentURL:   "https://gateway.example/connect/gateway/processing",
		Timezone:     "Europe/Berlin",
		CurrencyName: "EUR",
		CurrencyCode: "978",
		FrontendURL:  "https://shop.example",
		BackendURL:   "https://api.shop.example",
	}
}

// notificationHash считает эталонную подпись webhook по протоколу:
// фиксированный порядок, без разделителей.
func notificationHash(t *testing.T, cfg Config, chargetotal, currency, txndatetime, approvalCode string) string {
	t.Helper()

	payload := chargetotal + cfg.SharedSecret + currency + txndatetime + cfg.StoreName + approvalCode
	mac := hmac.New(sha256.New, []byte(cfg.SharedSecret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestSignParams_OrderIndependent(t *testing.T) {
	signer := NewSigner(testConfig(), nil)

	// Одинаковое содержимое, разный порядок вставки.
	first := map[string]string{}
	first["storename"] = "teststore123"
	first["chargetotal"] = "100.00"
	first["oid"] = "order-1"

	second := map[string]string{}
	second["oid"] = "order-1"
	second["storename"] = "teststore123"
	second["chargetotal"] = "100.00"

	if signer.SignParams(first) != signer.SignParams(second) {
		t.Fatal("signature must not depend on map insertion order")
	}

	delete(second, "oid")
	if signer.SignParams(first) == signer.SignParams(second) {
		t.Fatal("removing a key must change the signature")
	}
}

func TestSignParams_SkipsEmptyValues(t *testing.T) {
	signer := NewSigner(testConfig(), nil)

	withEmpty := map[string]string{
		"chargetotal": "100.00",
		"baddr2":      "",
		"phone":       "",
	}
	withoutEmpty := map[string]string{
		"chargetotal": "100.00",
	}

	if signer.SignParams(withEmpty) != signer.SignParams(withoutEmpty) {
		t.Fatal("empty values must be discarded before signing")
	}
}

func TestSignParams_ASCIIKeyOrder(t *testing.T) {
	cfg := testConfig()
	signer := NewSigner(cfg, nil)

	// Байтовый порядок: "Zeta" сортируется раньше "alpha".
	got := signer.SignParams(map[string]string{
		"alpha": "second",
		"Zeta":  "first",
	})

	mac := hmac.New(sha256.New, []byte(cfg.SharedSecret))
	mac.Write([]byte("first|second"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Fatalf("expected uppercase keys to sort before lowercase: got %s, want %s", got, want)
	}
}

func TestVerifyNotification_RoundTrip(t *testing.T) {
	cfg := testConfig()
	signer := NewSigner(cfg, nil)

	const (
		chargetotal  = "100.00"
		currency     = "978"
		txndatetime  = "2025:04:01-12:30:45"
		approvalCode = "Y:123456:4567890123:PPX :1234"
	)

	hash := notificationHash(t, cfg, chargetotal, currency, txndatetime, approvalCode)
	if !signer.VerifyNotification(chargetotal, currency, txndatetime, approvalCode, hash) {
		t.Fatal("valid notification hash must verify")
	}

	// Изменение любого поля ломает подпись.
	cases := []struct {
		name        string
		chargetotal string
		currency    string
		txndatetime string
		approval    string
	}{
		{"chargetotal", "100.01", currency, txndatetime, approvalCode},
		{"currency", chargetotal, "840", txndatetime, approvalCode},
		{"txndatetime", chargetotal, currency, "2025:04:01-12:30:46", approvalCode},
		{"approval_code", chargetotal, currency, txndatetime, "N:declined"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if signer.VerifyNotification(tc.chargetotal, tc.currency, tc.txndatetime, tc.approval, hash) {
				t.Fatalf("altered %s must fail verification", tc.name)
			}
		})
	}
}

func TestVerifyNotification_WrongSecretOrStore(t *testing.T) {
	cfg := testConfig()
	hash := notificationHash(t, cfg, "50.00", "978", "2025:04:01-10:00:00", "Y:ok")

	otherSecret := cfg
	otherSecret.SharedSecret = "another-secret"
	if NewSigner(otherSecret, nil).VerifyNotification("50.00", "978", "2025:04:01-10:00:00", "Y:ok", hash) {
		t.Fatal("hash from a different secret must not verify")
	}

	otherStore := cfg
	otherStore.StoreName = "otherstore"
	if NewSigner(otherStore, nil).VerifyNotification("50.00", "978", "2025:04:01-10:00:00", "Y:ok", hash) {
		t.Fatal("hash for a different store must not verify")
	}
}

func TestVerifyNotification_MalformedHash(t *testing.T) {
	signer := NewSigner(testConfig(), nil)

	if signer.VerifyNotification("100.00", "978", "2025:04:01-12:30:45", "Y:ok", "%%%not-base64%%%") {
		t.Fatal("malformed base64 must be reported as verification failure, not panic")
	}
}
