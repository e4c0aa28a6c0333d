// Package pricing derives the current price and sale status of a product
// from data already loaded. It performs no I/O; callers supply the clock.
package pricing

import (
	"sort"
	"time"

	model "bid-backend/internal/models"
)

// SortBids orders bids in place by (amount DESC, createdAt DESC).
// The first element after sorting is the winning bid.
func SortBids(bids []model.Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Amount != bids[j].Amount {
			return bids[i].Amount > bids[j].Amount
		}
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
}

// WinningBid returns the bid ranked first under (amount DESC, createdAt DESC)
// and false when no bids exist.
func WinningBid(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount ||
			(b.Amount == winning.Amount && b.CreatedAt.After(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, true
}

// CurrentPrice returns the winning bid amount, or the starting price when the
// product has no bids.
func CurrentPrice(p model.Product) float64 {
	if top, ok := WinningBid(p.Bids); ok {
		return top.Amount
	}
	return p.StartingPrice
}

// Status reports SOLD once now is strictly after the product's end time,
// ACTIVE otherwise. A bid placed exactly at the end time is still accepted.
func Status(p model.Product, now time.Time) model.ProductStatus {
	if now.After(p.EndTime) {
		return model.StatusSold
	}
	return model.StatusActive
}
