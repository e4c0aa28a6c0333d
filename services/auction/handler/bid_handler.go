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

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, productID int64, amount float64, bidderName string, now time.Time) (model.Bid, error)
	ListBids(ctx context.Context, productID int64) ([]model.Bid, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /api/products/:id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	productID, err := helpers.ParseID(c.Param("id"))
	if err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	now := time.Now().UTC()
	bid, err := h.service.PlaceBid(c.Request.Context(), productID, req.Amount, req.BidderName, now)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", err, map[string]any{
			"product_id": productID,
			"amount":     req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"product_id": bid.ProductID,
		"amount":     bid.Amount,
	})
}

// ListBidsHandler handles GET /api/products/:id/bids
func (h *BiddingHandler) ListBidsHandler(c *gin.Context) {
	productID, err := helpers.ParseID(c.Param("id"))
	if err != nil {
		helpers.HandleBindError(c, "ListBidsHandler", err)
		return
	}

	bids, err := h.service.ListBids(c.Request.Context(), productID)
	if err != nil {
		helpers.RespondError(c, "ListBidsHandler", err, map[string]any{"product_id": productID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"product_id": productID,
		"count":      len(bids),
	})
}
