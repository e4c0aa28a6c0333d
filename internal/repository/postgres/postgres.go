package postgres

import (
	"context"
	"errors"
	"fmt"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bidOrdering = "amount DESC, created_at DESC, id DESC"

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same query methods run either directly on the pool or inside a locked
// transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo is the PostgreSQL implementation of repository.AuctionDB
type Repo struct {
	pool *pgxpool.Pool
	q    querier
}

// NewRepo creates a repository backed by the given pool
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, q: pool}
}

func (r *Repo) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, seller_name, name, description, starting_price, end_time, created_at, image_filename
		FROM products
		WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, fmt.Errorf("get product %d: %w", id, auctionerrors.ErrProductNotFound)
		}
		return model.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}

	p.Bids, err = r.GetBidsByProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, seller_name, name, description, starting_price, end_time, created_at, image_filename
		FROM products
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return r.collectProducts(ctx, rows)
}

func (r *Repo) ListProductsBySeller(ctx context.Context, sellerName string) ([]model.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, seller_name, name, description, starting_price, end_time, created_at, image_filename
		FROM products
		WHERE lower(seller_name) = lower($1)
		ORDER BY created_at DESC, id DESC`, sellerName)
	if err != nil {
		return nil, fmt.Errorf("list products for seller %q: %w", sellerName, err)
	}
	return r.collectProducts(ctx, rows)
}

func (r *Repo) SaveProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == 0 {
		err := r.q.QueryRow(ctx, `
			INSERT INTO products (seller_name, name, description, starting_price, end_time, created_at, image_filename)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			p.SellerName, p.Name, p.Description, p.StartingPrice, p.EndTime, p.CreatedAt, p.ImageFilename,
		).Scan(&p.ID)
		if err != nil {
			return model.Product{}, fmt.Errorf("insert product: %w", err)
		}
		return p, nil
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE products
		SET seller_name = $2, name = $3, description = $4, starting_price = $5,
		    end_time = $6, created_at = $7, image_filename = $8
		WHERE id = $1`,
		p.ID, p.SellerName, p.Name, p.Description, p.StartingPrice, p.EndTime, p.CreatedAt, p.ImageFilename)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.Product{}, fmt.Errorf("save product %d: %w", p.ID, auctionerrors.ErrProductNotFound)
	}
	return p, nil
}

// DeleteProduct removes the product; its bids go with it via ON DELETE CASCADE.
func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete product %d: %w", id, auctionerrors.ErrProductNotFound)
	}
	return nil
}

func (r *Repo) GetHighestBid(ctx context.Context, productID int64) (model.Bid, error) {
	var b model.Bid
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, amount, bidder_name, created_at
		FROM bids
		WHERE product_id = $1
		ORDER BY `+bidOrdering+`
		LIMIT 1`, productID,
	).Scan(&b.ID, &b.ProductID, &b.Amount, &b.BidderName, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get highest bid for product %d: %w", productID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("get highest bid for product %d: %w", productID, err)
	}
	return b, nil
}

func (r *Repo) GetBidsByProduct(ctx context.Context, productID int64) ([]model.Bid, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, amount, bidder_name, created_at
		FROM bids
		WHERE product_id = $1
		ORDER BY `+bidOrdering, productID)
	if err != nil {
		return nil, fmt.Errorf("list bids for product %d: %w", productID, err)
	}
	defer rows.Close()

	bids := []model.Bid{}
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.ProductID, &b.Amount, &b.BidderName, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bids for product %d: %w", productID, err)
	}
	return bids, nil
}

func (r *Repo) SaveBid(ctx context.Context, bid model.Bid) (model.Bid, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO bids (product_id, amount, bidder_name, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		bid.ProductID, bid.Amount, bid.BidderName, bid.CreatedAt,
	).Scan(&bid.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Bid{}, fmt.Errorf("save bid for product %d: %w", bid.ProductID, auctionerrors.ErrProductNotFound)
		}
		return model.Bid{}, fmt.Errorf("save bid for product %d: %w", bid.ProductID, err)
	}
	return bid, nil
}

// WithProductLock runs fn inside a transaction holding a row lock on the
// product, so concurrent bid checks against the same product serialize at the
// database.
func (r *Repo) WithProductLock(ctx context.Context, productID int64, fn func(repository.AuctionDB) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin product lock tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&locked)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock product %d: %w", productID, err)
	}
	// A missing row is left for fn to report, so callers see the same
	// not-found error with or without the lock.

	if err := fn(&Repo{pool: r.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit product lock tx: %w", err)
	}
	return nil
}

func (r *Repo) collectProducts(ctx context.Context, rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	var products []model.Product
	index := map[int64]int{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Bids = []model.Bid{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}
	if len(products) == 0 {
		return []model.Product{}, nil
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	bidRows, err := r.q.Query(ctx, `
		SELECT id, product_id, amount, bidder_name, created_at
		FROM bids
		WHERE product_id = ANY($1)
		ORDER BY `+bidOrdering, ids)
	if err != nil {
		return nil, fmt.Errorf("load bids: %w", err)
	}
	defer bidRows.Close()

	for bidRows.Next() {
		var b model.Bid
		if err := bidRows.Scan(&b.ID, &b.ProductID, &b.Amount, &b.BidderName, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		if i, ok := index[b.ProductID]; ok {
			products[i].Bids = append(products[i].Bids, b)
		}
	}
	if err := bidRows.Err(); err != nil {
		return nil, fmt.Errorf("load bids: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.SellerName, &p.Name, &p.Description,
		&p.StartingPrice, &p.EndTime, &p.CreatedAt, &p.ImageFilename)
	return p, err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
