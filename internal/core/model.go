package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus is the lifecycle state of a quote. Any status may be selected
// from any other; Revised is normally set by Revise.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "Draft"
	StatusSent     QuoteStatus = "Sent"
	StatusApproved QuoteStatus = "Approved"
	StatusRejected QuoteStatus = "Rejected"
	StatusRevised  QuoteStatus = "Revised"
)

// QuoteStatuses lists every status in display order.
var QuoteStatuses = []QuoteStatus{StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusRevised}

// Valid reports whether s is one of the five known statuses.
func (s QuoteStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

const (
	DefaultCurrency     = "USD"
	DefaultUnit         = "piece"
	DefaultValidityDays = 30
)

var (
	DefaultQuantity = decimal.NewFromInt(1)
	DefaultTaxRate  = decimal.NewFromInt(20)
)

// LineItem is one priced row within a quote. TaxRate is a percentage in [0,100].
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"tax"`
}

// Discount is the quote-level discount specification fed into CalculateTotals.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Quote is the priced proposal document. Company and customer fields are
// copies taken from a CompanyProfile or Customer, not references.
type Quote struct {
	ID              string          `json:"id"`
	CompanyName     string          `json:"companyName"`
	CompanyAddress  string          `json:"companyAddress"`
	CompanyPhone    string          `json:"companyPhone"`
	CompanyEmail    string          `json:"companyEmail"`
	CompanyLogo     string          `json:"companyLogo,omitempty"`
	CustomerName    string          `json:"customerName"`
	CustomerContact string          `json:"customerContact"`
	CustomerAddress string          `json:"customerAddress"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	QuoteNumber     string          `json:"quoteNumber,omitempty"`
	QuoteDate       time.Time       `json:"quoteDate"`
	ValidUntilDate  time.Time       `json:"validUntilDate"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
	Currency        string          `json:"currency"`
	Items           []LineItem      `json:"items"`
	Notes           string          `json:"notes,omitempty"`
	DiscountType    DiscountType    `json:"discountType"`
	DiscountValue   decimal.Decimal `json:"discountValue"`
	Status          QuoteStatus     `json:"status"`
	RevisionOf      string          `json:"revisionOf,omitempty"`
}

// Discount returns the quote's discount specification.
func (q *Quote) Discount() Discount {
	return Discount{Type: q.DiscountType, Value: q.DiscountValue}
}

// Totals runs the calculation engine over the quote's items and discount.
func (q *Quote) Totals() Totals {
	return CalculateTotals(q.Items, q.Discount())
}

// Clone returns a deep copy; items and the updatedAt pointer are not shared.
func (q *Quote) Clone() *Quote {
	c := *q
	c.Items = append([]LineItem(nil), q.Items...)
	if q.UpdatedAt != nil {
		t := *q.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

type Customer struct {
	ID              string `json:"id"`
	CustomerName    string `json:"customerName"`
	CustomerContact string `json:"customerContact"`
	CustomerAddress string `json:"customerAddress"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
}

// ApplyToQuote copies the customer's fields into q.
func (c *Customer) ApplyToQuote(q *Quote) {
	q.CustomerName = c.CustomerName
	q.CustomerContact = c.CustomerContact
	q.CustomerAddress = c.CustomerAddress
	q.CustomerEmail = c.CustomerEmail
	q.CustomerPhone = c.CustomerPhone
}

// CompanyProfile is a reusable seller identity applied to new quotes.
type CompanyProfile struct {
	ID             string `json:"id"`
	CompanyName    string `json:"companyName"`
	CompanyLogo    string `json:"companyLogo,omitempty"`
	CompanyAddress string `json:"companyAddress"`
	CompanyPhone   string `json:"companyPhone"`
	CompanyEmail   string `json:"companyEmail"`
}

// ApplyToQuote copies the profile's fields into q.
func (p *CompanyProfile) ApplyToQuote(q *Quote) {
	q.CompanyName = p.CompanyName
	q.CompanyLogo = p.CompanyLogo
	q.CompanyAddress = p.CompanyAddress
	q.CompanyPhone = p.CompanyPhone
	q.CompanyEmail = p.CompanyEmail
}

// User is an account allowed to sign in. PasswordHash is a bcrypt hash.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
}

// Database is the whole persisted document. It is always read and written
// in full; Version is bumped by the store on every successful save.
type Database struct {
	Version         int64            `json:"version"`
	Quotes          []Quote          `json:"quotes"`
	Customers       []Customer       `json:"customers"`
	CompanyProfiles []CompanyProfile `json:"companyProfiles"`
	Users           []User           `json:"users,omitempty"`
}

// EmptyDatabase returns the document used when nothing has been stored yet.
func EmptyDatabase() *Database {
	return &Database{
		Quotes:          []Quote{},
		Customers:       []Customer{},
		CompanyProfiles: []CompanyProfile{},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with arrays rather than null.
func (d *Database) Normalize() {
	if d.Quotes == nil {
		d.Quotes = []Quote{}
	}
	if d.Customers == nil {
		d.Customers = []Customer{}
	}
	if d.CompanyProfiles == nil {
		d.CompanyProfiles = []CompanyProfile{}
	}
}

// NewID returns a fresh unique token for any entity.
func NewID() string {
	return uuid.NewString()
}

// Today returns midnight UTC of now's calendar date.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewLineItem returns a blank row with default quantity, unit and tax.
func NewLineItem() LineItem {
	return LineItem{
		ID:        NewID(),
		Quantity:  DefaultQuantity,
		Unit:      DefaultUnit,
		UnitPrice: decimal.Zero,
		TaxRate:   DefaultTaxRate,
	}
}

// NewQuote returns a fresh draft quote with one blank line item.
func NewQuote(now time.Time) *Quote {
	today := Today(now)
	return &Quote{
		ID:             NewID(),
		QuoteDate:      today,
		ValidUntilDate: today.AddDate(0, 0, DefaultValidityDays),
		Currency:       DefaultCurrency,
		Items:          []LineItem{NewLineItem()},
		DiscountType:   DiscountPercentage,
		DiscountValue:  decimal.Zero,
		Status:         StatusDraft,
	}
}
