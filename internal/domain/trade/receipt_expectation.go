package trade

import "github.com/erp/purchase/internal/domain/shared"

// ReceiptExpectation defines how receipts are produced once an order is confirmed
type ReceiptExpectation string

const (
	// ReceiptExpectationAutomatic creates one receipt move per line on confirmation
	ReceiptExpectationAutomatic ReceiptExpectation = "automatic"
	// ReceiptExpectationManual creates nothing on confirmation; receipts are
	// registered explicitly through manual receipts
	ReceiptExpectationManual ReceiptExpectation = "manual"
)

// DefaultReceiptExpectation is used when an order does not specify one
const DefaultReceiptExpectation = ReceiptExpectationAutomatic

// ReceiptExpectations lists every declared variant
func ReceiptExpectations() []ReceiptExpectation {
	return []ReceiptExpectation{ReceiptExpectationAutomatic, ReceiptExpectationManual}
}

// IsValid checks if the value is a declared variant
func (e ReceiptExpectation) IsValid() bool {
	for _, v := range ReceiptExpectations() {
		if v == e {
			return true
		}
	}
	return false
}

// ParseReceiptExpectation parses a value, defaulting empty input
func ParseReceiptExpectation(s string) (ReceiptExpectation, error) {
	if s == "" {
		return DefaultReceiptExpectation, nil
	}
	e := ReceiptExpectation(s)
	if !e.IsValid() {
		return "", shared.NewDomainError("INVALID_RECEIPT_EXPECTATION", "Unknown receipt expectation: "+s)
	}
	return e, nil
}
