package app

// ListQuotesRequest is the search input for ListQuotes. Status and SortBy are
// matched case-insensitively; empty values mean "any" and "date".
type ListQuotesRequest struct {
	Query  string
	Status string
	SortBy string
	Desc   bool
}

// UpdateFieldsRequest edits a stored quote by field name.
type UpdateFieldsRequest struct {
	QuoteID string            `json:"-"`
	Fields  map[string]string `json:"fields"`
	Items   []ItemFieldEdit   `json:"items"`
}

// ItemFieldEdit sets one field of the line item at Index (0-based).
type ItemFieldEdit struct {
	Index int    `json:"index"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// LogoUploadRequest is an uploaded logo file.
type LogoUploadRequest struct {
	Filename    string
	ContentType string
	Data        []byte
}
