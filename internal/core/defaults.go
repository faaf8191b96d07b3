package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record is an untyped entity as decoded from JSON. It is the input of the
// defaults + validate pipeline.
type Record map[string]any

// DecodeRecord parses a JSON object, keeping numbers as json.Number so that
// decimal values survive without float rounding.
func DecodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, malformed(err.Error())
	}
	if rec == nil {
		return nil, malformed("not a JSON object")
	}
	return rec, nil
}

func malformed(msg string) error {
	return &ValidationError{Entity: "record", Errors: []FieldError{{
		Field: "body", Kind: KindInvalidType, Message: msg,
	}}}
}

// RecordFrom converts any JSON-serializable value into a Record.
func RecordFrom(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return DecodeRecord(data)
}

func (r Record) absent(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

func (r Record) setDefault(key string, v any) {
	if r.absent(key) {
		r[key] = v
	}
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ApplyLineItemDefaults fills absent item fields: quantity 1, unit "piece",
// unitPrice 0, tax 20, and a fresh id.
func ApplyLineItemDefaults(raw Record) Record {
	rec := raw.clone()
	rec.setDefault("id", NewID())
	rec.setDefault("description", "")
	rec.setDefault("quantity", json.Number(DefaultQuantity.String()))
	rec.setDefault("unit", DefaultUnit)
	rec.setDefault("unitPrice", json.Number("0"))
	rec.setDefault("tax", json.Number(DefaultTaxRate.String()))
	return rec
}

// ApplyQuoteDefaults fills every genuinely absent field of a raw quote.
// Values that are present, even if invalid, are left for ValidateQuote to report.
func ApplyQuoteDefaults(raw Record, now time.Time) Record {
	rec := raw.clone()
	rec.setDefault("id", NewID())
	for _, key := range []string{
		"companyName", "companyAddress", "companyPhone", "companyEmail",
		"customerName", "customerContact", "customerAddress", "customerEmail", "customerPhone",
	} {
		rec.setDefault(key, "")
	}
	rec.setDefault("currency", DefaultCurrency)
	rec.setDefault("discountType", string(DiscountPercentage))
	rec.setDefault("discountValue", json.Number("0"))
	rec.setDefault("status", string(StatusDraft))

	today := Today(now)
	rec.setDefault("quoteDate", today.Format(time.RFC3339))
	if rec.absent("validUntilDate") {
		base := today
		if t, err := parseDate(rec["quoteDate"]); err == nil {
			base = t
		}
		rec["validUntilDate"] = base.AddDate(0, 0, DefaultValidityDays).Format(time.RFC3339)
	}

	if rec.absent("items") {
		rec["items"] = []any{}
	}
	if items, ok := rec["items"].([]any); ok {
		filled := make([]any, len(items))
		for i, it := range items {
			if m, ok := asRecord(it); ok {
				filled[i] = ApplyLineItemDefaults(m)
			} else {
				filled[i] = it
			}
		}
		rec["items"] = filled
	}
	return rec
}

// ApplyCustomerDefaults fills absent customer fields.
func ApplyCustomerDefaults(raw Record) Record {
	rec := raw.clone()
	rec.setDefault("id", NewID())
	for _, key := range []string{"customerName", "customerContact", "customerAddress", "customerEmail", "customerPhone"} {
		rec.setDefault(key, "")
	}
	return rec
}

// ApplyCompanyProfileDefaults fills absent profile fields. Older documents
// stored the logo under "logoUrl"; it is carried over to companyLogo.
func ApplyCompanyProfileDefaults(raw Record) Record {
	rec := raw.clone()
	if rec.absent("companyLogo") && !rec.absent("logoUrl") {
		rec["companyLogo"] = rec["logoUrl"]
	}
	delete(rec, "logoUrl")
	rec.setDefault("id", NewID())
	for _, key := range []string{"companyName", "companyLogo", "companyAddress", "companyPhone", "companyEmail"} {
		rec.setDefault(key, "")
	}
	return rec
}

// ApplyUserDefaults fills absent user fields; the role defaults to "user".
func ApplyUserDefaults(raw Record) Record {
	rec := raw.clone()
	rec.setDefault("id", NewID())
	rec.setDefault("role", string(RoleUser))
	return rec
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}
