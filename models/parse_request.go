package models

type ParseRequest struct {
	URL  string
	HTML string

	// Optional hints. Explicit tags win over anything the detector guesses.
	Tags     LocationTags `json:"tags,omitempty"`
	Category string       `json:"category,omitempty"`
}
