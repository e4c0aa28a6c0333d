package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/internal/pricing"
)

// AuctionDB defines the product and bid storage interface for the auction
// system. Products own their bids: loading a product loads its bids ordered
// by (amount DESC, created_at DESC), and deleting a product deletes them.
type AuctionDB interface {
	GetProductByID(ctx context.Context, id int64) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListProductsBySeller(ctx context.Context, sellerName string) ([]model.Product, error)
	SaveProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetHighestBid(ctx context.Context, productID int64) (model.Bid, error)
	GetBidsByProduct(ctx context.Context, productID int64) ([]model.Bid, error)
	SaveBid(ctx context.Context, bid model.Bid) (model.Bid, error)

	// WithProductLock runs fn while holding an exclusive per-product lock, so
	// check-then-write sequences (bid acceptance, image swap) cannot interleave
	// for the same product. fn receives a handle whose writes are part of the
	// locked scope.
	WithProductLock(ctx context.Context, productID int64, fn func(AuctionDB) error) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu            sync.RWMutex
	products      map[int64]model.Product
	bids          map[int64][]model.Bid // key: productID
	nextProductID int64
	nextBidID     int64

	lockMu       sync.Mutex
	productLocks map[int64]*sync.Mutex
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		products:     make(map[int64]model.Product),
		bids:         make(map[int64][]model.Bid),
		productLocks: make(map[int64]*sync.Mutex),
	}
}

// GetProductByID returns the product with its bids ordered by
// (amount DESC, created_at DESC)
func (r *MemoryRepo) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, auctionerrors.ErrProductNotFound)
	}
	p.Bids = r.copyBids(id)
	return p, nil
}

// ListProducts returns all products ordered by created_at DESC, bids attached
func (r *MemoryRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Product, 0, len(r.products))
	for id, p := range r.products {
		p.Bids = r.copyBids(id)
		out = append(out, p)
	}
	sortProductsNewestFirst(out)
	return out, nil
}

// ListProductsBySeller returns the seller's products (case-insensitive match)
// ordered by created_at DESC
func (r *MemoryRepo) ListProductsBySeller(ctx context.Context, sellerName string) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Product
	for id, p := range r.products {
		if strings.EqualFold(p.SellerName, sellerName) {
			p.Bids = r.copyBids(id)
			out = append(out, p)
		}
	}
	sortProductsNewestFirst(out)
	return out, nil
}

// SaveProduct inserts the product when its ID is zero, otherwise overwrites
// the stored record. Bids are never written through this method.
func (r *MemoryRepo) SaveProduct(ctx context.Context, p model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		r.nextProductID++
		p.ID = r.nextProductID
	} else if _, ok := r.products[p.ID]; !ok {
		return model.Product{}, fmt.Errorf("save product %d: %w", p.ID, auctionerrors.ErrProductNotFound)
	}

	stored := p
	stored.Bids = nil
	r.products[p.ID] = stored
	return p, nil
}

// DeleteProduct removes the product and all of its bids
func (r *MemoryRepo) DeleteProduct(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("delete product %d: %w", id, auctionerrors.ErrProductNotFound)
	}
	delete(r.products, id)
	delete(r.bids, id)
	return nil
}

// GetHighestBid returns the bid ranked first by (amount DESC, created_at DESC)
func (r *MemoryRepo) GetHighestBid(ctx context.Context, productID int64) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	winning, ok := pricing.WinningBid(r.bids[productID])
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for product %d: %w", productID, auctionerrors.ErrNoBids)
	}
	return winning, nil
}

// GetBidsByProduct returns all bids for a product ordered by
// (amount DESC, created_at DESC). An unknown product yields an empty list.
func (r *MemoryRepo) GetBidsByProduct(ctx context.Context, productID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.copyBids(productID), nil
}

// SaveBid records a bid against its product
func (r *MemoryRepo) SaveBid(ctx context.Context, bid model.Bid) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[bid.ProductID]; !ok {
		return model.Bid{}, fmt.Errorf("save bid for product %d: %w", bid.ProductID, auctionerrors.ErrProductNotFound)
	}

	r.nextBidID++
	bid.ID = r.nextBidID
	r.bids[bid.ProductID] = append(r.bids[bid.ProductID], bid)
	return bid, nil
}

// WithProductLock serializes fn against other locked operations on the same
// product. Locks for distinct products are independent.
func (r *MemoryRepo) WithProductLock(ctx context.Context, productID int64, fn func(AuctionDB) error) error {
	mu := r.productLock(productID)
	mu.Lock()
	defer mu.Unlock()
	return fn(r)
}

func (r *MemoryRepo) productLock(productID int64) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()

	mu, ok := r.productLocks[productID]
	if !ok {
		mu = &sync.Mutex{}
		r.productLocks[productID] = mu
	}
	return mu
}

// copyBids returns a sorted copy; callers hold at least the read lock.
func (r *MemoryRepo) copyBids(productID int64) []model.Bid {
	bids := append([]model.Bid(nil), r.bids[productID]...)
	pricing.SortBids(bids)
	return bids
}

func sortProductsNewestFirst(products []model.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
}

