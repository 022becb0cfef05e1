package enums

import "fmt"

// PaymentMethod tags how the student claims to have paid. Reviewed manually
// by an admin against the uploaded proof; never verified programmatically.
type PaymentMethod string

const (
	PaymentMethodTransferencia PaymentMethod = "transferencia"
	PaymentMethodDeposito      PaymentMethod = "deposito"
	PaymentMethodMpesa         PaymentMethod = "mpesa"
	PaymentMethodEmola         PaymentMethod = "emola"
	PaymentMethodOutro         PaymentMethod = "outro"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodTransferencia,
	PaymentMethodDeposito,
	PaymentMethodMpesa,
	PaymentMethodEmola,
	PaymentMethodOutro,
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
