package handler

import (
	"errors"
	"net/http"

	"bid-backend/internal/uploads"
	"bid-backend/services/auction/helpers"
	"bid-backend/utils"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	store   uploads.Store
	baseURL string
}

func NewUploadHandler(store uploads.Store, baseURL string) *UploadHandler {
	return &UploadHandler{store: store, baseURL: baseURL}
}

// UploadImageHandler handles POST /api/uploads/image (multipart field "file"),
// storing the image without attaching it to a product yet.
func (h *UploadHandler) UploadImageHandler(c *gin.Context) {
	img, err := helpers.ReadImageFile(c, "file")
	if err != nil {
		helpers.HandleBindError(c, "UploadImageHandler", err)
		return
	}
	if img == nil {
		helpers.HandleBindError(c, "UploadImageHandler", errors.New("file is required"))
		return
	}

	key, err := h.store.Save(*img)
	if err != nil {
		helpers.RespondError(c, "UploadImageHandler", err, map[string]any{"filename": img.Filename})
		return
	}

	resp := helpers.UploadResponse{
		Filename: key,
		URL:      helpers.BuildImageURL(key, h.baseURL),
	}
	utils.JSONResponse(c, http.StatusCreated, resp, "image uploaded successfully")
	helpers.LogSuccess("UploadImageHandler", "image uploaded successfully", map[string]any{
		"key": key,
	})
}
