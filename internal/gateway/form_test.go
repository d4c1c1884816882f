package gateway

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func testFormBuilder(t *testing.T) *FormBuilder {
	t.Helper()

	cfg := testConfig()
	builder, err := NewFormBuilder(cfg, NewSigner(cfg, nil))
	if err != nil {
		t.Fatalf("new form builder: %v", err)
	}
	builder.now = func() time.Time {
		return time.Date(2025, 4, 1, 12, 30, 45, 0, builder.location)
	}
	return builder
}

func shippingRequest() FormRequest {
	return FormRequest{
		ShippingAddress: domain.Address{
			Name:    "Ivan Petrov",
			Line1:   "Main Street 1",
			City:    "Berlin",
			Country: "DE",
			Zip:     "10115",
		},
		Email: "ivan@example.com",
		Phone: "+4915112345678",
	}
}

func TestFormBuilder_Build(t *testing.T) {
	builder := testFormBuilder(t)

	form, err := builder.Build(shippingRequest(), "order-1", 10000)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}

	if form.ActionURL != testConfig().PaymentURL {
		t.Fatalf("unexpected action url: %s", form.ActionURL)
	}
	if form.Method != "POST" {
		t.Fatalf("unexpected method: %s", form.Method)
	}

	want := map[string]string{
		"storename":                  "teststore123",
		"checkoutoption":             "combinedpage",
		"txntype":                    "sale",
		"timezone":                   "Europe/Berlin",
		"txndatetime":                "2025:04:01-12:30:45",
		"hash_algorithm":             "HMACSHA256",
		"chargetotal":                "100.00",
		"currency":                   "978",
		"responseSuccessURL":         "https://api.shop.example/payments/success",
		"responseFailURL":            "https://api.shop.example/payments/fail",
		"transactionNotificationURL": "https://api.shop.example/payments/webhook",
		"bname":                      "Ivan Petrov",
		"baddr1":                     "Main Street 1",
		"bcity":                      "Berlin",
		"bcountry":                   "DE",
		"bzip":                       "10115",
		"email":                      "ivan@example.com",
		"oid":                        "order-1",
	}
	for key, value := range want {
		if form.Fields[key] != value {
			t.Fatalf("field %s: got %q, want %q", key, form.Fields[key], value)
		}
	}

	if form.Fields["hashExtended"] == "" {
		t.Fatal("hashExtended must be present")
	}

	// Подпись считается по полям без hashExtended.
	unsigned := make(map[string]string, len(form.Fields))
	for key, value := range form.Fields {
		if key == "hashExtended" {
			continue
		}
		unsigned[key] = value
	}
	if got := NewSigner(testConfig(), nil).SignParams(unsigned); got != form.Fields["hashExtended"] {
		t.Fatalf("hashExtended mismatch: got %s, want %s", form.Fields["hashExtended"], got)
	}
}

func TestFormBuilder_BillingAddressSelection(t *testing.T) {
	builder := testFormBuilder(t)

	req := shippingRequest()
	req.UseBillingAddress = true
	req.BillingAddress = domain.Address{
		Name:    "Anna Petrova",
		Line1:   "Billing Lane 2",
		City:    "Hamburg",
		Country: "DE",
		Zip:     "20095",
	}

	form, err := builder.Build(req, "order-2", 5000)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	if form.Fields["bname"] != "Anna Petrova" || form.Fields["bcity"] != "Hamburg" {
		t.Fatal("explicit billing address must win over shipping address")
	}
}

func TestFormBuilder_NoResolvableBillingAddress(t *testing.T) {
	builder := testFormBuilder(t)

	req := FormRequest{Email: "ivan@example.com"}
	if _, err := builder.Build(req, "order-3", 5000); err != domain.ErrBillingAddressRequired {
		t.Fatalf("expected ErrBillingAddressRequired, got %v", err)
	}

	// Выбран «другой биллинговый адрес», но сам адрес пустой.
	req = shippingRequest()
	req.UseBillingAddress = true
	if _, err := builder.Build(req, "order-4", 5000); err != domain.ErrBillingAddressRequired {
		t.Fatalf("expected ErrBillingAddressRequired, got %v", err)
	}
}

func TestFormBuilder_OptionalFieldsOmittedWhenEmpty(t *testing.T) {
	builder := testFormBuilder(t)

	// В shippingRequest нет ни второй строки адреса, ни региона.
	form, err := builder.Build(shippingRequest(), "order-6", 10000)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	for _, key := range []string{"baddr2", "bstate"} {
		if _, ok := form.Fields[key]; ok {
			t.Fatalf("empty optional field %s must be omitted", key)
		}
	}
	if form.Fields["phone"] != "+4915112345678" {
		t.Fatalf("unexpected phone: %q", form.Fields["phone"])
	}

	req := shippingRequest()
	req.Phone = ""
	req.ShippingAddress.Line2 = "Apt 2"
	req.ShippingAddress.State = "BE"

	form, err = builder.Build(req, "order-7", 10000)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	if _, ok := form.Fields["phone"]; ok {
		t.Fatal("empty phone must be omitted")
	}
	if form.Fields["baddr2"] != "Apt 2" || form.Fields["bstate"] != "BE" {
		t.Fatalf("optional address fields lost: %+v", form.Fields)
	}
}

func TestFormBuilder_AmountFormatting(t *testing.T) {
	builder := testFormBuilder(t)

	cases := []struct {
		minor int64
		want  string
	}{
		{10000, "100.00"},
		{5, "0.05"},
		{99950, "999.50"},
	}
	for _, tc := range cases {
		form, err := builder.Build(shippingRequest(), "order-5", tc.minor)
		if err != nil {
			t.Fatalf("build form: %v", err)
		}
		if form.Fields["chargetotal"] != tc.want {
			t.Fatalf("chargetotal for %d: got %s, want %s", tc.minor, form.Fields["chargetotal"], tc.want)
		}
	}
}
