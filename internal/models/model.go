package models

import "time"

// ProductStatus is derived from the listing's end time, never stored.
type ProductStatus string

const (
	StatusActive ProductStatus = "ACTIVE"
	StatusSold   ProductStatus = "SOLD"
)

// Product represents an auctioned listing owned by a seller
type Product struct {
	ID            int64     `json:"id"`
	SellerName    string    `json:"seller_name"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	StartingPrice float64   `json:"starting_price"`
	EndTime       time.Time `json:"end_time"`
	CreatedAt     time.Time `json:"created_at"`
	ImageFilename string    `json:"image_filename"`

	// Bids are loaded together with the product, ordered by
	// (amount DESC, created_at DESC); the first element is the winning bid.
	Bids []Bid `json:"bids,omitempty"`
}

// Bid represents a price offer against a product
type Bid struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Amount     float64   `json:"amount"`
	BidderName string    `json:"bidder_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImageUpload carries a decoded multipart image payload into the core.
type ImageUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ProductForm is the input for product create/update. Optional numeric and
// time fields are pointers so "absent" and "zero" stay distinguishable;
// text fields are empty when absent.
type ProductForm struct {
	SellerName    string
	Name          string
	Description   string
	StartingPrice *float64
	EndTime       *time.Time
	Image         *ImageUpload
}
