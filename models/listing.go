package models

import "strings"

// ListingRecord accumulates everything known about one listing. The field
// parser creates it from a block of card text; the detail enricher tops up
// fields that are still empty. Zero bed/unit counts mean "unknown", not zero.
type ListingRecord struct {
	State        string `json:"state"`
	Address      string `json:"address"`
	Price        string `json:"price"`
	Beds         int    `json:"beds"`
	Units        int    `json:"units"`
	SqFt         string `json:"sqft"`
	PropertyType string `json:"property_type"`
	CapRate      string `json:"cap_rate"`

	BrokerName    string `json:"broker_name"`
	BrokerCompany string `json:"broker_company"`
	BrokerPhone   string `json:"broker_phone"`
	BrokerEmail   string `json:"broker_email"`

	URL string `json:"url"`
}

// Key returns the best available natural identity for deduplication: the
// listing URL, else the lower-cased trimmed address, else the price string.
// Empty when the record has none of the three.
func (r *ListingRecord) Key() string {
	if r.URL != "" {
		return r.URL
	}
	if addr := strings.ToLower(strings.TrimSpace(r.Address)); addr != "" {
		return addr
	}
	return r.Price
}

// HasBrokerContact reports whether a detail-page visit has nothing left to
// add for broker contact fields.
func (r *ListingRecord) HasBrokerContact() bool {
	return r.BrokerPhone != "" && r.BrokerEmail != "" && r.BrokerName != ""
}
