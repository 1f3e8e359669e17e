package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type sampleRequest struct {
	Name     string  `json:"name" validate:"required"`
	SKU      string  `json:"sku" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=0"`
}

// Property: a payload passes validation exactly when every required field is
// present.
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeSKU bool) bool {
			reqMap := map[string]interface{}{
				"price":    9.9,
				"quantity": 3,
			}
			if includeName {
				reqMap["name"] = "Hammer"
			}
			if includeSKU {
				reqMap["sku"] = "HAM-001"
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var decoded sampleRequest
			err := DecodeAndValidate(req, &decoded)

			if includeName && includeSKU {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_NegativeValuesAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative price or quantity fails validation", prop.ForAll(
		func(price float64, quantity int) bool {
			reqMap := map[string]interface{}{
				"name":     "Hammer",
				"sku":      "HAM-001",
				"price":    price,
				"quantity": quantity,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var decoded sampleRequest
			err := DecodeAndValidate(req, &decoded)

			if price >= 0 && quantity >= 0 {
				return err == nil
			}
			return err != nil
		},
		gen.Float64Range(-1000, 1000),
		gen.IntRange(-1000, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrorsIncludesFields(t *testing.T) {
	reqBody, _ := json.Marshal(map[string]interface{}{
		"price":    -1,
		"quantity": 3,
	})
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var decoded sampleRequest
	err := DecodeAndValidate(req, &decoded)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) == 0 {
		t.Fatal("no formatted errors")
	}

	fields := map[string]bool{}
	for _, fieldError := range formatted {
		if fieldError.Message == "" {
			t.Errorf("empty message for field %s", fieldError.Field)
		}
		fields[fieldError.Field] = true
	}
	for _, want := range []string{"Name", "SKU", "Price"} {
		if !fields[want] {
			t.Errorf("missing error for field %s (got %v)", want, fields)
		}
	}
}

func TestDecodeAndValidateMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte(`{"name": `)))
	req.Header.Set("Content-Type", "application/json")

	var decoded sampleRequest
	err := DecodeAndValidate(req, &decoded)
	if err == nil {
		t.Fatal("expected decode error")
	}
	// Decode errors are not field errors; formatting yields nothing.
	if formatted := FormatValidationErrors(err); len(formatted) != 0 {
		t.Fatalf("expected no formatted errors, got %v", formatted)
	}
}
