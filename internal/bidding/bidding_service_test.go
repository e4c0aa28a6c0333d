package bidding

import (
	"context"
	"errors"
	"testing"
	"time"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// expectLock makes WithProductLock run its body against the mock itself.
func expectLock(mockRepo *repository.MockAuctionDB, productID int64) {
	mockRepo.EXPECT().
		WithProductLock(gomock.Any(), productID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, fn func(repository.AuctionDB) error) error {
			return fn(mockRepo)
		})
}

func openProduct(id int64, startingPrice float64, endTime time.Time) model.Product {
	return model.Product{
		ID:            id,
		SellerName:    "alice",
		Name:          "Lamp",
		Description:   "A lamp",
		StartingPrice: startingPrice,
		EndTime:       endTime,
	}
}

// Tests PlaceBid
func TestBiddingService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo)

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Hour)

	// Table-driven test cases
	tests := []struct {
		name          string
		productID     int64
		amount        float64
		bidderName    string
		now           time.Time
		mockSetup     func()
		expectError   bool
		expectedError error
	}{
		{
			name:       "valid_first_bid",
			productID:  1,
			amount:     15.00,
			bidderName: "bob",
			now:        now,
			mockSetup: func() {
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(openProduct(1, 10.00, end), nil)
				mockRepo.EXPECT().SaveBid(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, b model.Bid) (model.Bid, error) {
						b.ID = 1
						return b, nil
					})
			},
			expectError: false,
		},
		{
			name:        "zero_amount",
			productID:   1,
			amount:      0,
			now:         now,
			mockSetup:   func() {},
			expectError: true,
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "negative_amount",
			productID:   1,
			amount:      -5,
			now:         now,
			mockSetup:   func() {},
			expectError: true,
			expectedError: auctionerrors.ErrInvalidInput,
		},
		{
			name:      "product_not_found",
			productID: 42,
			amount:    20.00,
			now:       now,
			mockSetup: func() {
				expectLock(mockRepo, 42)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(42)).Return(model.Product{}, auctionerrors.ErrProductNotFound)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrProductNotFound,
		},
		{
			name:      "bidding_closed",
			productID: 1,
			amount:    20.00,
			now:       end.Add(time.Second),
			mockSetup: func() {
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(openProduct(1, 10.00, end), nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBiddingClosed,
		},
		{
			name:       "bid_exactly_at_end_time_accepted",
			productID:  1,
			amount:     20.00,
			bidderName: "bob",
			now:        end,
			mockSetup: func() {
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(openProduct(1, 10.00, end), nil)
				mockRepo.EXPECT().SaveBid(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, b model.Bid) (model.Bid, error) {
						b.ID = 2
						return b, nil
					})
			},
			expectError: false,
		},
		{
			name:      "bid_below_current_price",
			productID: 1,
			amount:    12.00,
			now:       now,
			mockSetup: func() {
				p := openProduct(1, 10.00, end)
				p.Bids = []model.Bid{{ID: 1, ProductID: 1, Amount: 15.00, CreatedAt: now.Add(-time.Minute)}}
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(p, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "tie_with_current_price_rejected",
			productID: 1,
			amount:    15.00,
			now:       now,
			mockSetup: func() {
				p := openProduct(1, 10.00, end)
				p.Bids = []model.Bid{{ID: 1, ProductID: 1, Amount: 15.00, CreatedAt: now.Add(-time.Minute)}}
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(p, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "tie_with_starting_price_rejected",
			productID: 1,
			amount:    10.00,
			now:       now,
			mockSetup: func() {
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(openProduct(1, 10.00, end), nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:       "repo_fails",
			productID:  1,
			amount:     20.00,
			bidderName: "bob",
			now:        now,
			mockSetup: func() {
				expectLock(mockRepo, 1)
				mockRepo.EXPECT().GetProductByID(gomock.Any(), int64(1)).Return(openProduct(1, 10.00, end), nil)
				mockRepo.EXPECT().SaveBid(gomock.Any(), gomock.Any()).Return(model.Bid{}, errors.New("repo write failed"))
			},
			expectError:   true,
			expectedError: nil, // Service wraps repo error, we don't match specific error here
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bid, err := service.PlaceBid(ctx, tc.productID, tc.amount, tc.bidderName, tc.now)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)
				require.NotZero(t, bid.ID)
				require.Equal(t, tc.productID, bid.ProductID)
				require.Equal(t, tc.amount, bid.Amount)
				require.Equal(t, tc.bidderName, bid.BidderName)
				require.Equal(t, tc.now, bid.CreatedAt)
			}
		})
	}
}

// Monotonicity against the real in-memory store: each accepted bid must be
// strictly above the previous one, and ties must be rejected.
func TestBiddingService_PlaceBid_Monotonic(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	service := NewBiddingService(repo)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	product, err := repo.SaveProduct(ctx, model.Product{
		SellerName:    "alice",
		Name:          "Lamp",
		Description:   "A lamp",
		StartingPrice: 10.00,
		EndTime:       now.Add(time.Hour),
		CreatedAt:     now,
	})
	require.NoError(t, err)

	_, err = service.PlaceBid(ctx, product.ID, 15.00, "bob", now)
	require.NoError(t, err)

	_, err = service.PlaceBid(ctx, product.ID, 15.00, "carol", now.Add(time.Second))
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	_, err = service.PlaceBid(ctx, product.ID, 12.00, "carol", now.Add(2*time.Second))
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	_, err = service.PlaceBid(ctx, product.ID, 15.01, "carol", now.Add(3*time.Second))
	require.NoError(t, err)

	bids, err := service.ListBids(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, 15.01, bids[0].Amount)
}

// Tests ListBids
func TestBiddingService_ListBids(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewBiddingService(mockRepo)

	ctx := context.Background()
	now := time.Now().UTC()

	bidsExample := []model.Bid{
		{ID: 2, ProductID: 1, BidderName: "carol", Amount: 150, CreatedAt: now.Add(time.Second)},
		{ID: 1, ProductID: 1, BidderName: "bob", Amount: 100, CreatedAt: now},
	}

	tests := []struct {
		name         string
		productID    int64
		mockSetup    func()
		expectError  bool
		expectedBids []model.Bid
	}{
		{
			name:      "product_with_bids",
			productID: 1,
			mockSetup: func() {
				mockRepo.EXPECT().GetBidsByProduct(gomock.Any(), int64(1)).Return(bidsExample, nil)
			},
			expectedBids: bidsExample,
		},
		{
			name:      "unknown_product_yields_empty_list",
			productID: 999,
			mockSetup: func() {
				mockRepo.EXPECT().GetBidsByProduct(gomock.Any(), int64(999)).Return([]model.Bid{}, nil)
			},
			expectedBids: []model.Bid{},
		},
		{
			name:      "repo_fails",
			productID: 1,
			mockSetup: func() {
				mockRepo.EXPECT().GetBidsByProduct(gomock.Any(), int64(1)).Return(nil, errors.New("repo read failed"))
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bids, err := service.ListBids(ctx, tc.productID)

			if tc.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedBids, bids)
			}
		})
	}
}
