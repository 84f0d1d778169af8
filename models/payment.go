package models

// PaymentMethod is a mobile-money operator.
type PaymentMethod string

const (
	PaymentMTN    PaymentMethod = "mtn_momo"
	PaymentOrange PaymentMethod = "orange_money"
)

// PaymentMethods lists the supported operators with their display names.
var PaymentMethods = map[PaymentMethod]string{
	PaymentMTN:    "MTN Mobile Money",
	PaymentOrange: "Orange Money",
}

// Valid reports whether m is a supported operator.
func (m PaymentMethod) Valid() bool {
	_, ok := PaymentMethods[m]
	return ok
}

// DisplayName returns the operator's user-facing name.
func (m PaymentMethod) DisplayName() string {
	if name, ok := PaymentMethods[m]; ok {
		return name
	}
	return string(m)
}

// Currency is the only currency the platform charges in.
const Currency = "FCFA"
