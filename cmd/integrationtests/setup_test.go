package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"bid-backend/internal/bidding"
	model "bid-backend/internal/models"
	"bid-backend/internal/products"
	"bid-backend/internal/repository"
	"bid-backend/internal/server"
	"bid-backend/internal/uploads"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the full router on an in-memory repository and
// a temp-dir image store, returning the repo for direct seeding.
func SetupTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	imageStore := uploads.NewDiskStore(t.TempDir())

	biddingSvc := bidding.NewBiddingService(repo)
	productSvc := products.NewProductService(repo, imageStore)

	router := server.SetupRouter(biddingSvc, productSvc, imageStore, server.Options{
		AllowedOrigins: []string{"*"},
		UploadsDir:     imageStore.Dir(),
	})
	return router, repo
}

// SeedProduct stores a product directly in the repo, bypassing the API so
// tests can set arbitrary end times.
func SeedProduct(t *testing.T, repo *repository.MemoryRepo, p model.Product) model.Product {
	t.Helper()

	saved, err := repo.SaveProduct(context.Background(), p)
	require.NoError(t, err)
	return saved
}

// ExecuteJSON executes a JSON request and parses the response envelope.
func ExecuteJSON(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// ExecuteMultipart executes a multipart form request (product create/update,
// image upload) and parses the response envelope.
func ExecuteMultipart(t *testing.T, router *gin.Engine, method, url string, fields map[string]string, fileField, filename, contentType string, fileData []byte) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// CreateProductViaAPI creates a valid product through the API and returns its
// response data.
func CreateProductViaAPI(t *testing.T, router *gin.Engine, seller, name string, startingPrice float64, endTime time.Time) map[string]any {
	t.Helper()

	fields := map[string]string{
		"sellerName":    seller,
		"name":          name,
		"description":   "integration test listing",
		"startingPrice": formatPrice(startingPrice),
		"endTime":       endTime.UTC().Format(time.RFC3339),
	}
	resp, w := ExecuteMultipart(t, router, "POST", "/api/products", fields, "image", "listing.jpg", "image/jpeg", []byte("jpegdata"))
	require.Equal(t, 201, w.Code, "create product: %v", resp)
	return resp["data"].(map[string]any)
}

func formatPrice(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
