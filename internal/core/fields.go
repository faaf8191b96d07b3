package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// QuoteField names an editable quote field. Edits go through SetQuoteField
// rather than arbitrary key lookup.
type QuoteField string

const (
	FieldCompanyName     QuoteField = "companyName"
	FieldCompanyAddress  QuoteField = "companyAddress"
	FieldCompanyPhone    QuoteField = "companyPhone"
	FieldCompanyEmail    QuoteField = "companyEmail"
	FieldCompanyLogo     QuoteField = "companyLogo"
	FieldCustomerName    QuoteField = "customerName"
	FieldCustomerContact QuoteField = "customerContact"
	FieldCustomerAddress QuoteField = "customerAddress"
	FieldCustomerEmail   QuoteField = "customerEmail"
	FieldCustomerPhone   QuoteField = "customerPhone"
	FieldQuoteNumber     QuoteField = "quoteNumber"
	FieldQuoteDate       QuoteField = "quoteDate"
	FieldValidUntilDate  QuoteField = "validUntilDate"
	FieldCurrency        QuoteField = "currency"
	FieldNotes           QuoteField = "notes"
	FieldDiscountType    QuoteField = "discountType"
	FieldDiscountValue   QuoteField = "discountValue"
	FieldStatus          QuoteField = "status"
)

// QuoteFields lists the editable fields in form order.
var QuoteFields = []QuoteField{
	FieldCompanyName, FieldCompanyAddress, FieldCompanyPhone, FieldCompanyEmail, FieldCompanyLogo,
	FieldCustomerName, FieldCustomerContact, FieldCustomerAddress, FieldCustomerEmail, FieldCustomerPhone,
	FieldQuoteNumber, FieldQuoteDate, FieldValidUntilDate, FieldCurrency, FieldNotes,
	FieldDiscountType, FieldDiscountValue, FieldStatus,
}

// ParseQuoteField resolves a field name case-insensitively.
func ParseQuoteField(name string) (QuoteField, error) {
	for _, f := range QuoteFields {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", &ValidationError{Entity: "quote", Errors: []FieldError{{
		Field: name, Kind: KindInvalidEnum, Message: "unknown quote field",
	}}}
}

func fieldErr(field string, kind FieldErrorKind, format string, args ...any) error {
	return &ValidationError{Entity: "quote", Errors: []FieldError{{
		Field: field, Kind: kind, Message: fmt.Sprintf(format, args...),
	}}}
}

// SetQuoteField parses value for field and assigns it to q. Invalid values
// leave q unchanged and return a *ValidationError.
func SetQuoteField(q *Quote, field QuoteField, value string) error {
	switch field {
	case FieldCompanyName:
		q.CompanyName = value
	case FieldCompanyAddress:
		q.CompanyAddress = value
	case FieldCompanyPhone:
		q.CompanyPhone = value
	case FieldCompanyEmail:
		if value != "" && !ValidEmail(value) {
			return fieldErr(string(field), KindInvalidEmail, "invalid email %q", value)
		}
		q.CompanyEmail = value
	case FieldCompanyLogo:
		q.CompanyLogo = value
	case FieldCustomerName:
		q.CustomerName = value
	case FieldCustomerContact:
		q.CustomerContact = value
	case FieldCustomerAddress:
		q.CustomerAddress = value
	case FieldCustomerEmail:
		if value != "" && !ValidEmail(value) {
			return fieldErr(string(field), KindInvalidEmail, "invalid email %q", value)
		}
		q.CustomerEmail = value
	case FieldCustomerPhone:
		q.CustomerPhone = value
	case FieldQuoteNumber:
		q.QuoteNumber = value
	case FieldQuoteDate, FieldValidUntilDate:
		t, err := parseDate(value)
		if err != nil {
			return fieldErr(string(field), KindInvalidDate, "must be a date (YYYY-MM-DD)")
		}
		if field == FieldQuoteDate {
			q.QuoteDate = t
		} else {
			q.ValidUntilDate = t
		}
	case FieldCurrency:
		cur := strings.ToUpper(strings.TrimSpace(value))
		if cur == "" {
			return fieldErr(string(field), KindRequired, "must not be empty")
		}
		q.Currency = cur
	case FieldNotes:
		q.Notes = value
	case FieldDiscountType:
		dt := DiscountType(strings.ToLower(strings.TrimSpace(value)))
		if !dt.Valid() {
			return fieldErr(string(field), KindInvalidEnum, "must be one of percentage, fixed")
		}
		q.DiscountType = dt
	case FieldDiscountValue:
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return fieldErr(string(field), KindInvalidType, "must be a number")
		}
		if d.IsNegative() {
			return fieldErr(string(field), KindTooSmall, "must be >= 0")
		}
		q.DiscountValue = d
	case FieldStatus:
		st, err := ParseStatus(value)
		if err != nil {
			return err
		}
		q.Status = st
	default:
		return fieldErr(string(field), KindInvalidEnum, "unknown quote field")
	}
	return nil
}

// ItemField names an editable line item field.
type ItemField string

const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemUnit        ItemField = "unit"
	ItemUnitPrice   ItemField = "unitPrice"
	ItemTax         ItemField = "tax"
)

var ItemFields = []ItemField{ItemDescription, ItemQuantity, ItemUnit, ItemUnitPrice, ItemTax}

func ParseItemField(name string) (ItemField, error) {
	for _, f := range ItemFields {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", fieldErr(name, KindInvalidEnum, "unknown line item field")
}

// SetItemField parses value for field and assigns it to item.
func SetItemField(item *LineItem, field ItemField, value string) error {
	switch field {
	case ItemDescription:
		item.Description = value
		return nil
	case ItemUnit:
		item.Unit = value
		return nil
	}

	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fieldErr(string(field), KindInvalidType, "must be a number")
	}
	if d.IsNegative() {
		return fieldErr(string(field), KindTooSmall, "must be >= 0")
	}
	switch field {
	case ItemQuantity:
		item.Quantity = d
	case ItemUnitPrice:
		item.UnitPrice = d
	case ItemTax:
		if d.GreaterThan(maxTaxRate) {
			return fieldErr(string(field), KindTooBig, "must be <= 100")
		}
		item.TaxRate = d
	default:
		return fieldErr(string(field), KindInvalidEnum, "unknown line item field")
	}
	return nil
}
