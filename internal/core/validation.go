package core

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

// checker accumulates field violations so that validation reports all of them.
type checker struct {
	entity string
	errs   []FieldError
}

func (c *checker) add(field string, kind FieldErrorKind, format string, args ...any) {
	c.errs = append(c.errs, FieldError{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Entity: c.entity, Errors: c.errs}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (c *checker) str(rec Record, key, prefix string, required bool) string {
	field := join(prefix, key)
	v, ok := rec[key]
	if !ok || v == nil {
		if required {
			c.add(field, KindRequired, "is required")
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.add(field, KindInvalidType, "must be a string")
		return ""
	}
	if required && strings.TrimSpace(s) == "" {
		c.add(field, KindRequired, "must not be empty")
	}
	return s
}

// email accepts an empty string or a bare, syntactically valid address.
func (c *checker) email(rec Record, key, prefix string) string {
	s := c.str(rec, key, prefix, false)
	if s == "" {
		return s
	}
	if !ValidEmail(s) {
		c.add(join(prefix, key), KindInvalidEmail, "invalid email %q", s)
	}
	return s
}

// ValidEmail reports whether s is a bare address such as "a@b.co".
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

type bounds struct {
	min, max *decimal.Decimal
}

func (c *checker) dec(rec Record, key, prefix string, b bounds) decimal.Decimal {
	field := join(prefix, key)
	v, ok := rec[key]
	if !ok || v == nil {
		c.add(field, KindRequired, "is required")
		return decimal.Zero
	}
	d, err := toDecimal(v)
	if err != nil {
		c.add(field, KindInvalidType, "must be a number")
		return decimal.Zero
	}
	if b.min != nil && d.LessThan(*b.min) {
		c.add(field, KindTooSmall, "must be >= %s", b.min.String())
	}
	if b.max != nil && d.GreaterThan(*b.max) {
		c.add(field, KindTooBig, "must be <= %s", b.max.String())
	}
	return d
}

func (c *checker) date(rec Record, key, prefix string) time.Time {
	field := join(prefix, key)
	v, ok := rec[key]
	if !ok || v == nil {
		c.add(field, KindRequired, "is required")
		return time.Time{}
	}
	t, err := parseDate(v)
	if err != nil {
		c.add(field, KindInvalidDate, "must be a date (YYYY-MM-DD or RFC 3339)")
	}
	return t
}

func (c *checker) optDate(rec Record, key, prefix string) *time.Time {
	v, ok := rec[key]
	if !ok || v == nil || v == "" {
		return nil
	}
	t, err := parseDate(v)
	if err != nil {
		c.add(join(prefix, key), KindInvalidDate, "must be a date (YYYY-MM-DD or RFC 3339)")
		return nil
	}
	return &t
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	}
	return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
}

// parseDate accepts time.Time, RFC 3339 strings and YYYY-MM-DD strings. The
// result is always UTC.
func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC(), nil
		}
		if ts, err := time.Parse(dateOnly, s); err == nil {
			return ts, nil
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	return time.Time{}, fmt.Errorf("unsupported date type %T", v)
}

var (
	zero       = decimal.Zero
	maxTaxRate = decimal.NewFromInt(100)
)

func (c *checker) lineItem(rec Record, prefix string) LineItem {
	return LineItem{
		ID:          c.str(rec, "id", prefix, true),
		Description: c.str(rec, "description", prefix, false),
		Quantity:    c.dec(rec, "quantity", prefix, bounds{min: &zero}),
		Unit:        c.str(rec, "unit", prefix, false),
		UnitPrice:   c.dec(rec, "unitPrice", prefix, bounds{min: &zero}),
		TaxRate:     c.dec(rec, "tax", prefix, bounds{min: &zero, max: &maxTaxRate}),
	}
}

// ValidateLineItem type-checks a defaulted line item record.
func ValidateLineItem(rec Record) (*LineItem, error) {
	c := &checker{entity: "line item"}
	item := c.lineItem(rec, "")
	if err := c.err(); err != nil {
		return nil, err
	}
	return &item, nil
}

// ValidateQuote type-checks a defaulted quote record and returns the typed
// Quote, or a *ValidationError listing every violation.
func ValidateQuote(rec Record) (*Quote, error) {
	c := &checker{entity: "quote"}
	q := &Quote{
		ID:              c.str(rec, "id", "", true),
		CompanyName:     c.str(rec, "companyName", "", false),
		CompanyAddress:  c.str(rec, "companyAddress", "", false),
		CompanyPhone:    c.str(rec, "companyPhone", "", false),
		CompanyEmail:    c.email(rec, "companyEmail", ""),
		CompanyLogo:     c.str(rec, "companyLogo", "", false),
		CustomerName:    c.str(rec, "customerName", "", false),
		CustomerContact: c.str(rec, "customerContact", "", false),
		CustomerAddress: c.str(rec, "customerAddress", "", false),
		CustomerEmail:   c.email(rec, "customerEmail", ""),
		CustomerPhone:   c.str(rec, "customerPhone", "", false),
		QuoteNumber:     c.str(rec, "quoteNumber", "", false),
		QuoteDate:       c.date(rec, "quoteDate", ""),
		ValidUntilDate:  c.date(rec, "validUntilDate", ""),
		UpdatedAt:       c.optDate(rec, "updatedAt", ""),
		Currency:        c.str(rec, "currency", "", true),
		Notes:           c.str(rec, "notes", "", false),
		DiscountType:    DiscountType(c.str(rec, "discountType", "", true)),
		DiscountValue:   c.dec(rec, "discountValue", "", bounds{min: &zero}),
		Status:          QuoteStatus(c.str(rec, "status", "", true)),
		RevisionOf:      c.str(rec, "revisionOf", "", false),
	}
	q.Currency = strings.ToUpper(strings.TrimSpace(q.Currency))

	if q.DiscountType != "" && !q.DiscountType.Valid() {
		c.add("discountType", KindInvalidEnum, "must be one of percentage, fixed")
	}
	if q.Status != "" && !q.Status.Valid() {
		c.add("status", KindInvalidEnum, "must be one of Draft, Sent, Approved, Rejected, Revised")
	}

	switch items := rec["items"].(type) {
	case nil:
		c.add("items", KindRequired, "is required")
	case []any:
		q.Items = make([]LineItem, 0, len(items))
		for i, it := range items {
			prefix := fmt.Sprintf("items[%d]", i)
			m, ok := asRecord(it)
			if !ok {
				c.add(prefix, KindInvalidType, "must be an object")
				continue
			}
			q.Items = append(q.Items, c.lineItem(m, prefix))
		}
	default:
		c.add("items", KindInvalidType, "must be an array")
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return q, nil
}

func ValidateCustomer(rec Record) (*Customer, error) {
	c := &checker{entity: "customer"}
	cust := &Customer{
		ID:              c.str(rec, "id", "", true),
		CustomerName:    c.str(rec, "customerName", "", true),
		CustomerContact: c.str(rec, "customerContact", "", false),
		CustomerAddress: c.str(rec, "customerAddress", "", false),
		CustomerEmail:   c.email(rec, "customerEmail", ""),
		CustomerPhone:   c.str(rec, "customerPhone", "", false),
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return cust, nil
}

func ValidateCompanyProfile(rec Record) (*CompanyProfile, error) {
	c := &checker{entity: "company profile"}
	p := &CompanyProfile{
		ID:             c.str(rec, "id", "", true),
		CompanyName:    c.str(rec, "companyName", "", true),
		CompanyLogo:    c.str(rec, "companyLogo", "", false),
		CompanyAddress: c.str(rec, "companyAddress", "", false),
		CompanyPhone:   c.str(rec, "companyPhone", "", false),
		CompanyEmail:   c.email(rec, "companyEmail", ""),
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// UserInput is a validated request to create a user. Password is plaintext
// and is hashed by UserService before it is stored.
type UserInput struct {
	ID       string
	Username string
	Password string
	Role     Role
}

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

func ValidateUser(rec Record) (*UserInput, error) {
	c := &checker{entity: "user"}
	u := &UserInput{
		ID:       c.str(rec, "id", "", true),
		Username: strings.TrimSpace(c.str(rec, "username", "", true)),
		Password: c.str(rec, "password", "", true),
		Role:     Role(c.str(rec, "role", "", true)),
	}
	if u.Username != "" && len(u.Username) < minUsernameLen {
		c.add("username", KindTooSmall, "must be at least %d characters", minUsernameLen)
	}
	if u.Password != "" && len(u.Password) < minPasswordLen {
		c.add("password", KindTooSmall, "must be at least %d characters", minPasswordLen)
	}
	if u.Role != "" && !u.Role.Valid() {
		c.add("role", KindInvalidEnum, "must be one of admin, user")
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return u, nil
}

// ParseQuote runs the full pipeline on raw JSON: decode, defaults, validate.
func ParseQuote(data []byte, now time.Time) (*Quote, error) {
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	return ValidateQuote(ApplyQuoteDefaults(rec, now))
}
