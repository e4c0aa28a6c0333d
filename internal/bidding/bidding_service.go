package bidding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/internal/pricing"
	"bid-backend/internal/repository"
)

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo repository.AuctionDB
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB) *BiddingService {
	return &BiddingService{
		repo: repo,
	}
}

// PlaceBid validates and records a bid against a product. The whole
// check-then-insert sequence runs under the product lock so two concurrent
// bids cannot both pass the price check against a stale snapshot. now is the
// caller's clock and decides whether bidding is still open.
func (s *BiddingService) PlaceBid(ctx context.Context, productID int64, amount float64, bidderName string, now time.Time) (model.Bid, error) {
	if amount <= 0 {
		return model.Bid{}, fmt.Errorf("service: %w: bid amount must be greater than zero", auctionerrors.ErrInvalidInput)
	}

	var bid model.Bid
	err := s.repo.WithProductLock(ctx, productID, func(tx repository.AuctionDB) error {
		product, err := tx.GetProductByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("service: failed to load product %d: %w", productID, err)
		}

		// Strict-after: a bid placed exactly at the end time still counts.
		if now.After(product.EndTime) {
			return fmt.Errorf("service: %w", auctionerrors.ErrBiddingClosed)
		}

		current := pricing.CurrentPrice(product)
		if amount <= current {
			return fmt.Errorf("service: %w - current price is %.2f", auctionerrors.ErrBidTooLow, current)
		}

		bid, err = tx.SaveBid(ctx, model.Bid{
			ProductID:  productID,
			Amount:     amount,
			BidderName: strings.TrimSpace(bidderName),
			CreatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("service: failed to record bid for product %d: %w", productID, err)
		}
		return nil
	})
	if err != nil {
		return model.Bid{}, err
	}

	return bid, nil
}

// ListBids returns all bids for a product ordered by (amount DESC,
// createdAt DESC). An unknown product yields an empty list rather than an
// error; product existence is only enforced when writing.
func (s *BiddingService) ListBids(ctx context.Context, productID int64) ([]model.Bid, error) {
	bids, err := s.repo.GetBidsByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for product %d: %w", productID, err)
	}
	return bids, nil
}
