package services

import "errors"

// Analysis service errors.
var (
	ErrNoDataset          = errors.New("no delivery report loaded")
	ErrEmptyUpload        = errors.New("uploaded report is empty")
	ErrUnknownPlatform    = errors.New("unknown platform")
	ErrUnknownGroupColumn = errors.New("unknown grouping column")
)
