package helpers

import (
	"time"

	model "bid-backend/internal/models"
	"bid-backend/internal/pricing"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	BidderName string  `json:"bidder_name"`
}

type BidResponse struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	Amount     float64 `json:"amount"`
	BidderName string  `json:"bidder_name,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type ProductResponse struct {
	ID            int64   `json:"id"`
	SellerName    string  `json:"seller_name"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	StartingPrice float64 `json:"starting_price"`
	CurrentPrice  float64 `json:"current_price"`
	EndTime       string  `json:"end_time"`
	Status        string  `json:"status"`
	ImageURL      string  `json:"image_url,omitempty"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// ToBidResponse maps a bid to its response shape
func ToBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		ID:         bid.ID,
		ProductID:  bid.ProductID,
		Amount:     bid.Amount,
		BidderName: bid.BidderName,
		CreatedAt:  bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponses maps a bid list, returning an empty (non-nil) slice so JSON
// renders [] rather than null
func ToBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

// ToProductResponse maps a product to its response shape; current price and
// status are derived here, at the boundary, from the caller's clock.
func ToProductResponse(p model.Product, now time.Time, baseURL string) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SellerName:    p.SellerName,
		Name:          p.Name,
		Description:   p.Description,
		StartingPrice: p.StartingPrice,
		CurrentPrice:  pricing.CurrentPrice(p),
		EndTime:       p.EndTime.UTC().Format(time.RFC3339),
		Status:        string(pricing.Status(p, now)),
		ImageURL:      BuildImageURL(p.ImageFilename, baseURL),
	}
}

// ToProductResponses maps a product list
func ToProductResponses(products []model.Product, now time.Time, baseURL string) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p, now, baseURL))
	}
	return out
}

// BuildImageURL turns a storage key into a client-facing URL. With no base
// URL configured the path is relative to the API host.
func BuildImageURL(key, baseURL string) string {
	if key == "" {
		return ""
	}
	if baseURL == "" {
		return "/uploads/" + key
	}
	if baseURL[len(baseURL)-1] != '/' {
		baseURL += "/"
	}
	return baseURL + "uploads/" + key
}
