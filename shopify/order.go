package shopify

import (
	"time"

	"github.com/com4-wkflws/shopify/schema"
	"github.com/shopspring/decimal"
)

type CancelReason string

const CancelReasonCustomer CancelReason = "customer"

// LineItemTax is a tax applied to a line item
type LineItemTax struct {
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	Rate          decimal.Decimal `json:"rate"`
	ChannelLiable *bool           `json:"channel_liable"`
}

// LineItem is one product of an order
type LineItem struct {
	ID               int64           `json:"id"`
	Price            decimal.Decimal `json:"price"`
	ProductID        *int64          `json:"product_id"` // nil once the product is deleted
	Quantity         int             `json:"quantity"`
	RequiresShipping bool            `json:"requires_shipping"`
	SKU              string          `json:"sku"`
	Title            string          `json:"title"`
	VariantID        int64           `json:"variant_id"`
	VariantTitle     string          `json:"variant_title"`
	Vendor           string          `json:"vendor"`
	GiftCard         bool            `json:"gift_card"`
	TotalDiscount    decimal.Decimal `json:"total_discount"`
	TaxLines         []LineItemTax   `json:"tax_lines"`
}

/* Order is a subset of the Admin API order resource
 * Money is decimal.Decimal so totals round-trip exactly
 */
type Order struct {
	ID                    int64           `json:"id"`
	BillingAddress        Address         `json:"billing_address"`
	BuyerAcceptsMarketing bool            `json:"buyer_accepts_marketing"`
	CancelReason          *CancelReason   `json:"cancel_reason"`
	CancelledAt           *time.Time      `json:"cancelled_at"`
	CartToken             string          `json:"cart_token"`
	CheckoutToken         string          `json:"checkout_token"`
	ClosedAt              *time.Time      `json:"closed_at"`
	CreatedAt             time.Time       `json:"created_at"`
	Currency              string          `json:"currency"`
	CurrentTotalDiscounts decimal.Decimal `json:"current_total_discounts"`
	CurrentTotalPrice     decimal.Decimal `json:"current_total_price"`
	CurrentSubtotalPrice  decimal.Decimal `json:"current_subtotal_price"`
	CurrentTotalTax       decimal.Decimal `json:"current_total_tax"`
	Customer              *Customer       `json:"customer"`
	Email                 string          `json:"email"`
	LandingSite           *string         `json:"landing_site"`
	LineItems             []LineItem      `json:"line_items"`
	Name                  string          `json:"name"`
	Note                  *string         `json:"note"`
	Number                int64           `json:"number"`
	OrderNumber           int64           `json:"order_number"`
	Phone                 *string         `json:"phone"`
	PresentmentCurrency   string          `json:"presentment_currency"`
	ProcessedAt           time.Time       `json:"processed_at"`
	ReferringSite         *string         `json:"referring_site"`
	ShippingAddress       Address         `json:"shipping_address"`
	SubtotalPrice         decimal.Decimal `json:"subtotal_price"`
	Tags                  string          `json:"tags"`
	TaxesIncluded         bool            `json:"taxes_included"`
	Test                  bool            `json:"test"`
	Token                 string          `json:"token"`
	TotalDiscounts        decimal.Decimal `json:"total_discounts"`
	TotalLineItemsPrice   decimal.Decimal `json:"total_line_items_price"`
	TotalOutstanding      decimal.Decimal `json:"total_outstanding"`
	TotalPrice            decimal.Decimal `json:"total_price"`
	TotalTax              decimal.Decimal `json:"total_tax"`
	TotalTipReceived      decimal.Decimal `json:"total_tip_received"`
	TotalWeight           int64           `json:"total_weight"`
	UpdatedAt             time.Time       `json:"updated_at"`
	OrderStatusURL        *string         `json:"order_status_url"`
}

func (o *Order) applyDefaults() {
	if o.LineItems == nil {
		o.LineItems = []LineItem{}
	}
	for i := range o.LineItems {
		if o.LineItems[i].TaxLines == nil {
			o.LineItems[i].TaxLines = []LineItemTax{}
		}
	}
	if o.Customer != nil {
		o.Customer.applyDefaults()
	}
}

// orderSchema checks the fields an Order cannot be built without
var orderSchema = schema.MustCompile("order", `{
	"type": "object",
	"$defs": {
		"money": {"type": ["string", "number"]},
		"address": {
			"type": "object",
			"required": ["address1", "address2", "city", "province", "province_code", "zip", "country", "country_code"]
		},
		"line_item": {
			"type": "object",
			"properties": {
				"id": {"type": "integer"},
				"price": {"$ref": "#/$defs/money"},
				"total_discount": {"$ref": "#/$defs/money"},
				"tax_lines": {
					"type": "array",
					"items": {"type": "object", "required": ["title", "price", "rate"]}
				}
			},
			"required": ["id", "price", "quantity", "requires_shipping", "sku", "title", "variant_id", "variant_title", "vendor", "gift_card", "total_discount"]
		},
		"customer": {
			"type": "object",
			"properties": {
				"id": {"type": "integer"},
				"default_address": {"$ref": "#/$defs/address"}
			},
			"required": ["id", "currency", "created_at", "default_address", "email", "first_name", "last_name"]
		}
	},
	"properties": {
		"id": {"type": "integer"},
		"billing_address": {"$ref": "#/$defs/address"},
		"shipping_address": {"$ref": "#/$defs/address"},
		"customer": {"anyOf": [{"type": "null"}, {"$ref": "#/$defs/customer"}]},
		"line_items": {"type": "array", "items": {"$ref": "#/$defs/line_item"}},
		"current_total_discounts": {"$ref": "#/$defs/money"},
		"current_total_price": {"$ref": "#/$defs/money"},
		"current_subtotal_price": {"$ref": "#/$defs/money"},
		"current_total_tax": {"$ref": "#/$defs/money"},
		"subtotal_price": {"$ref": "#/$defs/money"},
		"total_discounts": {"$ref": "#/$defs/money"},
		"total_line_items_price": {"$ref": "#/$defs/money"},
		"total_outstanding": {"$ref": "#/$defs/money"},
		"total_price": {"$ref": "#/$defs/money"},
		"total_tax": {"$ref": "#/$defs/money"},
		"total_tip_received": {"$ref": "#/$defs/money"},
		"total_weight": {"type": "integer"},
		"number": {"type": "integer"},
		"order_number": {"type": "integer"}
	},
	"required": [
		"id", "billing_address", "cart_token", "checkout_token", "created_at", "currency",
		"current_total_discounts", "current_total_price", "current_subtotal_price", "current_total_tax",
		"email", "name", "number", "order_number", "presentment_currency", "processed_at",
		"shipping_address", "subtotal_price", "token", "total_discounts", "total_line_items_price",
		"total_outstanding", "total_price", "total_tax", "total_tip_received", "total_weight", "updated_at"
	]
}`)
