package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrNoBids          = errors.New("no bids found for product")
)

// Business logic errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrBidTooLow        = errors.New("bid must be greater than current price")
	ErrBiddingClosed    = errors.New("sale time is over, bidding is closed")
	ErrNotOwner         = errors.New("sellers can only modify their own products")
	ErrUnsupportedImage = errors.New("only JPG/PNG images are allowed")
)

// Infrastructure errors
var (
	ErrStorage = errors.New("storage failure")
)
