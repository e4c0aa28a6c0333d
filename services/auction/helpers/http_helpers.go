package helpers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bid-backend/internal/auctionerrors"
	model "bid-backend/internal/models"
	"bid-backend/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid must be greater than current price"
	case errors.Is(err, auctionerrors.ErrBiddingClosed):
		return http.StatusBadRequest, "sale time is over, bidding is closed"
	case errors.Is(err, auctionerrors.ErrUnsupportedImage):
		return http.StatusBadRequest, "only JPG/PNG images are allowed"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrNotOwner):
		return http.StatusForbidden, "sellers can only modify their own products"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err, sends the error envelope and logs it in one place
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, fields)
	} else {
		utils.Warn(handlerName+": "+message, fields)
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ParseID parses a numeric path parameter
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

// endTimeLayouts accepted on multipart forms; the offset-free layout is read
// as UTC.
var endTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseEndTime parses the endTime form field
func ParseEndTime(raw string) (time.Time, error) {
	for _, layout := range endTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid endTime %q, expected ISO-8601", raw)
}

// BindProductForm reads the multipart product form with explicit guards, so
// absent fields stay distinguishable from zero values.
func BindProductForm(c *gin.Context) (model.ProductForm, error) {
	var form model.ProductForm
	form.SellerName = c.PostForm("sellerName")
	form.Name = c.PostForm("name")
	form.Description = c.PostForm("description")

	if raw := strings.TrimSpace(c.PostForm("startingPrice")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.ProductForm{}, fmt.Errorf("invalid startingPrice %q", raw)
		}
		form.StartingPrice = &price
	}

	if raw := strings.TrimSpace(c.PostForm("endTime")); raw != "" {
		end, err := ParseEndTime(raw)
		if err != nil {
			return model.ProductForm{}, err
		}
		form.EndTime = &end
	}

	img, err := ReadImageFile(c, "image")
	if err != nil {
		return model.ProductForm{}, err
	}
	form.Image = img

	return form, nil
}

// ReadImageFile reads an uploaded file part into memory. A missing part is
// not an error; it returns (nil, nil) so callers can treat it as absent.
func ReadImageFile(c *gin.Context, field string) (*model.ImageUpload, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid %s file: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", field, err)
	}

	return &model.ImageUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
