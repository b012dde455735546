package models

type MenuItem struct {
	ID          string   `json:"id"`
	VendorID    string   `json:"vendor_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
}
