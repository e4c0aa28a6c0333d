// Package products implements listing management: create, partial update and
// delete with seller ownership checks, plus the image side effects that ride
// along with them.
package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/internal/repository"
	"bid-backend/internal/uploads"
	"bid-backend/utils"
)

// ProductService defines the business logic for product listings
type ProductService struct {
	repo   repository.AuctionDB
	images uploads.Store
}

// NewProductService creates a new ProductService instance
func NewProductService(repo repository.AuctionDB, images uploads.Store) *ProductService {
	return &ProductService{
		repo:   repo,
		images: images,
	}
}

// GetByID returns the product with its bids loaded
func (s *ProductService) GetByID(ctx context.Context, id int64) (model.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("service: failed to get product %d: %w", id, err)
	}
	return product, nil
}

// ListAll returns every product ordered by creation time, newest first
func (s *ProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

// ListBySeller returns the seller's products, newest first. The seller match
// is case-insensitive.
func (s *ProductService) ListBySeller(ctx context.Context, sellerName string) ([]model.Product, error) {
	if strings.TrimSpace(sellerName) == "" {
		return nil, fmt.Errorf("service: %w: sellerName is required", auctionerrors.ErrInvalidInput)
	}
	products, err := s.repo.ListProductsBySeller(ctx, strings.TrimSpace(sellerName))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products for seller %s: %w", sellerName, err)
	}
	return products, nil
}

// Create validates the form, persists the image, then persists the product.
// If the product write fails the just-written image is cleaned up so no
// orphan file stays behind.
func (s *ProductService) Create(ctx context.Context, form model.ProductForm, now time.Time) (model.Product, error) {
	if err := validateUpsert(form, true, now); err != nil {
		return model.Product{}, err
	}

	key, err := s.images.Save(*form.Image)
	if err != nil {
		return model.Product{}, fmt.Errorf("service: failed to save image: %w", err)
	}

	product := model.Product{
		SellerName:    strings.TrimSpace(form.SellerName),
		Name:          strings.TrimSpace(form.Name),
		Description:   strings.TrimSpace(form.Description),
		StartingPrice: *form.StartingPrice,
		EndTime:       *form.EndTime,
		CreatedAt:     now,
		ImageFilename: key,
	}

	saved, err := s.repo.SaveProduct(ctx, product)
	if err != nil {
		s.images.DeleteIfExists(key)
		return model.Product{}, fmt.Errorf("service: failed to create product: %w", err)
	}

	utils.Info("product created", map[string]any{
		"product_id": saved.ID,
		"seller":     saved.SellerName,
		"image":      saved.ImageFilename,
	})
	return saved, nil
}

// Update applies a partial overwrite to an owned product. Supplying a new
// image swaps the stored key; the replaced file is deleted best-effort after
// the record is committed, so a cleanup failure never fails the update.
func (s *ProductService) Update(ctx context.Context, id int64, form model.ProductForm, now time.Time) (model.Product, error) {
	var updated model.Product
	err := s.repo.WithProductLock(ctx, id, func(tx repository.AuctionDB) error {
		product, err := tx.GetProductByID(ctx, id)
		if err != nil {
			return fmt.Errorf("service: failed to get product %d: %w", id, err)
		}

		if err := validateUpsert(form, false, now); err != nil {
			return err
		}
		if err := checkOwnership(product, form.SellerName); err != nil {
			return err
		}

		if name := strings.TrimSpace(form.Name); name != "" {
			product.Name = name
		}
		if description := strings.TrimSpace(form.Description); description != "" {
			product.Description = description
		}
		if form.StartingPrice != nil {
			product.StartingPrice = *form.StartingPrice
		}
		if form.EndTime != nil {
			product.EndTime = *form.EndTime
		}

		oldImage, newImage := "", ""
		if form.Image != nil && len(form.Image.Data) > 0 {
			key, err := s.images.Save(*form.Image)
			if err != nil {
				return fmt.Errorf("service: failed to save image: %w", err)
			}
			oldImage = product.ImageFilename
			product.ImageFilename = key
			newImage = key
		}

		updated, err = tx.SaveProduct(ctx, product)
		if err != nil {
			if newImage != "" {
				// The record keeps the old key, so the new file is the orphan.
				s.images.DeleteIfExists(newImage)
			}
			return fmt.Errorf("service: failed to update product %d: %w", id, err)
		}

		if oldImage != "" {
			s.images.DeleteIfExists(oldImage)
		}
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	return updated, nil
}

// Delete removes an owned product and its bids, then best-effort deletes the
// image file. The record deletion is the durable step; file cleanup failure
// is swallowed.
func (s *ProductService) Delete(ctx context.Context, id int64, sellerName string) error {
	return s.repo.WithProductLock(ctx, id, func(tx repository.AuctionDB) error {
		product, err := tx.GetProductByID(ctx, id)
		if err != nil {
			return fmt.Errorf("service: failed to get product %d: %w", id, err)
		}

		if strings.TrimSpace(sellerName) == "" {
			return fmt.Errorf("service: %w: sellerName is required", auctionerrors.ErrInvalidInput)
		}
		if err := checkOwnership(product, sellerName); err != nil {
			return err
		}

		if err := tx.DeleteProduct(ctx, id); err != nil {
			return fmt.Errorf("service: failed to delete product %d: %w", id, err)
		}
		s.images.DeleteIfExists(product.ImageFilename)

		utils.Info("product deleted", map[string]any{
			"product_id": id,
			"seller":     product.SellerName,
		})
		return nil
	})
}

// checkOwnership compares seller names case-insensitively after trimming
func checkOwnership(product model.Product, sellerName string) error {
	if !strings.EqualFold(product.SellerName, strings.TrimSpace(sellerName)) {
		return fmt.Errorf("service: %w", auctionerrors.ErrNotOwner)
	}
	return nil
}

// validateUpsert runs the guard clauses in a fixed order so error messages
// stay deterministic. On create every field is required; on update only
// supplied fields are validated.
func validateUpsert(form model.ProductForm, isCreate bool, now time.Time) error {
	invalid := func(msg string) error {
		return fmt.Errorf("service: %w: %s", auctionerrors.ErrInvalidInput, msg)
	}

	if strings.TrimSpace(form.SellerName) == "" {
		return invalid("sellerName is required")
	}
	if isCreate {
		if strings.TrimSpace(form.Name) == "" {
			return invalid("product name is required")
		}
		if strings.TrimSpace(form.Description) == "" {
			return invalid("description is required")
		}
		if form.StartingPrice == nil {
			return invalid("starting price is required")
		}
		if form.EndTime == nil {
			return invalid("end time is required")
		}
		if form.Image == nil || len(form.Image.Data) == 0 {
			return invalid("image is required")
		}
	}

	if form.StartingPrice != nil && *form.StartingPrice <= 0 {
		return invalid("starting price must be greater than zero")
	}
	if form.EndTime != nil && !form.EndTime.After(now) {
		return invalid("end time must be in the future")
	}
	return nil
}
