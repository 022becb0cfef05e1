package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

// PaymentDetails holds the optional structured payment data attached to an
// enrollment. Field names are part of the frontend contract.
type PaymentDetails struct {
	TransactionID string           `json:"transactionId,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Currency      enums.Currency   `json:"currency,omitempty"`
	PaymentDate   *time.Time       `json:"paymentDate,omitempty"`
}

// Value marshals the details into JSON for Postgres.
func (p PaymentDetails) Value() (driver.Value, error) {
	buf, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the details.
func (p *PaymentDetails) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentDetails{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("payment details: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*p = PaymentDetails{}
		return nil
	}
	return json.Unmarshal(raw, p)
}
