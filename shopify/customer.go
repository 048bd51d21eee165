package shopify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a physical address. Shopify sends coordinates as strings.
type Address struct {
	Address1     string  `json:"address1"`
	Address2     string  `json:"address2"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	ProvinceCode string  `json:"province_code"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
	CountryCode  string  `json:"country_code"` // ISO 3166-1 alpha-2
	Latitude     *string `json:"latitude"`
	Longitude    *string `json:"longitude"`
	Name         *string `json:"name"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Phone        *string `json:"phone"`
	Company      *string `json:"company"`
}

// MarketingConsent is a customer's consent to email marketing
type MarketingConsent struct {
	State            string     `json:"state"`
	OptInLevel       string     `json:"opt_in_level"`
	ConsentUpdatedAt *time.Time `json:"consent_updated_at"`
}

// SMSMarketingConsent is a customer's consent to SMS marketing
type SMSMarketingConsent struct {
	MarketingConsent
	ConsentCollectedFrom string `json:"consent_collected_from"`
}

type CustomerState string

const (
	CustomerDisabled CustomerState = "disabled"
	CustomerEnabled  CustomerState = "enabled"
	CustomerInvited  CustomerState = "invited"
	CustomerDeclined CustomerState = "declined"
)

// Customer of a shop. Orders placed through POS may have none.
type Customer struct {
	ID                    int64                `json:"id"`
	Addresses             []Address            `json:"addresses"`
	Currency              string               `json:"currency"`
	CreatedAt             time.Time            `json:"created_at"`
	DefaultAddress        Address              `json:"default_address"`
	Email                 string               `json:"email"`
	EmailMarketingConsent *MarketingConsent    `json:"email_marketing_consent"`
	FirstName             string               `json:"first_name"`
	LastName              string               `json:"last_name"`
	LastOrderID           *int64               `json:"last_order_id"`
	LastOrderName         *string              `json:"last_order_name"`
	Phone                 *string              `json:"phone"`
	SMSMarketingConsent   *SMSMarketingConsent `json:"sms_marketing_consent"`
	State                 CustomerState        `json:"state"`
	Tags                  string               `json:"tags"`
	TaxExempt             bool                 `json:"tax_exempt"`
	TotalSpent            decimal.Decimal      `json:"total_spent"`
	VerifiedEmail         bool                 `json:"verified_email"`
}

// applyDefaults fills the values Shopify omits for older customers
func (c *Customer) applyDefaults() {
	if c.Addresses == nil {
		c.Addresses = []Address{}
	}
	if c.State == "" {
		c.State = CustomerEnabled
	}
}
