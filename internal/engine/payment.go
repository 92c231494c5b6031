package engine

import (
	"strings"

	"github.com/ukconnect/rail-booking/internal/model"
)

// paymentAliases maps common free-text payment labels onto the closed
// payment_method enum.  Keys are normalized (lowercase, underscores).
var paymentAliases = map[string]string{
	"card":         "credit_card",
	"credit":       "credit_card",
	"visa":         "credit_card",
	"mastercard":   "credit_card",
	"amex":         "credit_card",
	"debit":        "debit_card",
	"bank":         "bank_transfer",
	"transfer":     "bank_transfer",
	"applepay":     "apple_pay",
	"googlepay":    "google_pay",
	"points":       "loyalty_points",
	"loyalty":      "loyalty_points",
	"corporate":    "corporate_account",
	"gift_card":    "voucher",
	"gift_voucher": "voucher",
}

// normalizePaymentMethod maps a caller-supplied payment label onto the
// closed enum the store accepts.  Unknown labels are rejected so free text
// never reaches a CHECK constraint.
func normalizePaymentMethod(input string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(input))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return "", newError(KindValidation, "payment method is required")
	}
	if model.PaymentMethods[key] {
		return key, nil
	}
	if canonical, ok := paymentAliases[key]; ok {
		return canonical, nil
	}
	return "", newError(KindValidation, "unsupported payment method %q", input)
}
