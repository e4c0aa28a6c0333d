package handler

import (
	"context"
	"net/http"
	"time"

	model "bid-backend/internal/models"
	"bid-backend/services/auction/helpers"
	"bid-backend/utils"

	"github.com/gin-gonic/gin"
)

type ProductServiceInterface interface {
	GetByID(ctx context.Context, id int64) (model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	ListBySeller(ctx context.Context, sellerName string) ([]model.Product, error)
	Create(ctx context.Context, form model.ProductForm, now time.Time) (model.Product, error)
	Update(ctx context.Context, id int64, form model.ProductForm, now time.Time) (model.Product, error)
	Delete(ctx context.Context, id int64, sellerName string) error
}

type ProductHandler struct {
	service ProductServiceInterface
	baseURL string
}

func NewProductHandler(service ProductServiceInterface, baseURL string) *ProductHandler {
	return &ProductHandler{service: service, baseURL: baseURL}
}

// ListProductsHandler handles GET /api/products
func (h *ProductHandler) ListProductsHandler(c *gin.Context) {
	products, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListProductsHandler", err, nil)
		return
	}

	now := time.Now().UTC()
	utils.JSONResponse(c, http.StatusOK, helpers.ToProductResponses(products, now, h.baseURL), "products retrieved successfully")
	helpers.LogSuccess("ListProductsHandler", "products retrieved successfully", map[string]any{
		"count": len(products),
	})
}

// GetProductHandler handles GET /api/products/:id
func (h *ProductHandler) GetProductHandler(c *gin.Context) {
	id, err := helpers.ParseID(c.Param("id"))
	if err != nil {
		helpers.HandleBindError(c, "GetProductHandler", err)
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		helpers.RespondError(c, "GetProductHandler", err, map[string]any{"product_id": id})
		return
	}

	now := time.Now().UTC()
	utils.JSONResponse(c, http.StatusOK, helpers.ToProductResponse(product, now, h.baseURL), "product retrieved successfully")
}

// ListSellerProductsHandler handles GET /api/sellers/:sellerName/products
func (h *ProductHandler) ListSellerProductsHandler(c *gin.Context) {
	sellerName := c.Param("sellerName")

	products, err := h.service.ListBySeller(c.Request.Context(), sellerName)
	if err != nil {
		helpers.RespondError(c, "ListSellerProductsHandler", err, map[string]any{"seller": sellerName})
		return
	}

	now := time.Now().UTC()
	utils.JSONResponse(c, http.StatusOK, helpers.ToProductResponses(products, now, h.baseURL), "products retrieved successfully")
	helpers.LogSuccess("ListSellerProductsHandler", "products retrieved successfully", map[string]any{
		"seller": sellerName,
		"count":  len(products),
	})
}

// CreateProductHandler handles POST /api/products (multipart/form-data)
func (h *ProductHandler) CreateProductHandler(c *gin.Context) {
	form, err := helpers.BindProductForm(c)
	if err != nil {
		helpers.HandleBindError(c, "CreateProductHandler", err)
		return
	}

	now := time.Now().UTC()
	product, err := h.service.Create(c.Request.Context(), form, now)
	if err != nil {
		helpers.RespondError(c, "CreateProductHandler", err, map[string]any{"seller": form.SellerName})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToProductResponse(product, now, h.baseURL), "product created successfully")
	helpers.LogSuccess("CreateProductHandler", "product created successfully", map[string]any{
		"product_id": product.ID,
		"seller":     product.SellerName,
	})
}

// UpdateProductHandler handles PUT /api/products/:id (multipart/form-data)
func (h *ProductHandler) UpdateProductHandler(c *gin.Context) {
	id, err := helpers.ParseID(c.Param("id"))
	if err != nil {
		helpers.HandleBindError(c, "UpdateProductHandler", err)
		return
	}

	form, err := helpers.BindProductForm(c)
	if err != nil {
		helpers.HandleBindError(c, "UpdateProductHandler", err)
		return
	}

	now := time.Now().UTC()
	product, err := h.service.Update(c.Request.Context(), id, form, now)
	if err != nil {
		helpers.RespondError(c, "UpdateProductHandler", err, map[string]any{"product_id": id})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToProductResponse(product, now, h.baseURL), "product updated successfully")
	helpers.LogSuccess("UpdateProductHandler", "product updated successfully", map[string]any{
		"product_id": product.ID,
	})
}

// DeleteProductHandler handles DELETE /api/products/:id?sellerName=...
func (h *ProductHandler) DeleteProductHandler(c *gin.Context) {
	id, err := helpers.ParseID(c.Param("id"))
	if err != nil {
		helpers.HandleBindError(c, "DeleteProductHandler", err)
		return
	}

	sellerName := c.Query("sellerName")
	if err := h.service.Delete(c.Request.Context(), id, sellerName); err != nil {
		helpers.RespondError(c, "DeleteProductHandler", err, map[string]any{
			"product_id": id,
			"seller":     sellerName,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "product deleted successfully")
	helpers.LogSuccess("DeleteProductHandler", "product deleted successfully", map[string]any{
		"product_id": id,
	})
}
