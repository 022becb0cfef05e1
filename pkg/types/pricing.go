package types

import "github.com/shopspring/decimal"

// PricingOption is an alternative purchase tier for a course, for example a
// corporate or group price alongside the base price.
type PricingOption struct {
	Title       Bilingual       `json:"title"`
	PriceMZN    decimal.Decimal `json:"priceMZN"`
	PriceUSD    decimal.Decimal `json:"priceUSD"`
	Description *Bilingual      `json:"description,omitempty"`
}

// PricingOptionList is persisted as a JSONB array on the course row.
type PricingOptionList []PricingOption

// PaymentInfo holds the bank and mobile-money coordinates shown to students
// so they can pay for an enrollment out of band.
type PaymentInfo struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	NUIT          string `json:"nuit,omitempty"`
	MpesaNumber   string `json:"mpesaNumber,omitempty"`
	EmolaNumber   string `json:"emolNumber,omitempty"`
}
