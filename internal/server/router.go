package server

import (
	"time"

	"bid-backend/internal/bidding"
	"bid-backend/internal/products"
	"bid-backend/internal/uploads"
	handler "bid-backend/services/auction/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the wiring the router needs beyond the services themselves.
type Options struct {
	// AllowedOrigins configures CORS; "*" allows any origin.
	AllowedOrigins []string
	// UploadsDir is served statically under /uploads.
	UploadsDir string
	// BaseURL prefixes image URLs in responses.
	BaseURL string
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService *bidding.BiddingService, productService *products.ProductService, imageStore uploads.Store, opts Options) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	biddingHandler := handler.NewBiddingHandler(biddingService)
	productHandler := handler.NewProductHandler(productService, opts.BaseURL)
	uploadHandler := handler.NewUploadHandler(imageStore, opts.BaseURL)

	api := router.Group("/api")

	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", productHandler.ListProductsHandler)
		productRoutes.POST("", productHandler.CreateProductHandler)
		productRoutes.GET("/:id", productHandler.GetProductHandler)
		productRoutes.PUT("/:id", productHandler.UpdateProductHandler)
		productRoutes.DELETE("/:id", productHandler.DeleteProductHandler)
		productRoutes.GET("/:id/bids", biddingHandler.ListBidsHandler)
		productRoutes.POST("/:id/bids", biddingHandler.PlaceBidHandler)
	}

	sellerRoutes := api.Group("/sellers")
	{
		sellerRoutes.GET("/:sellerName/products", productHandler.ListSellerProductsHandler)
	}

	uploadRoutes := api.Group("/uploads")
	{
		uploadRoutes.POST("/image", uploadHandler.UploadImageHandler)
	}

	if opts.UploadsDir != "" {
		router.Static("/uploads", opts.UploadsDir)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour

	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
