package services

import "errors"

// Portfolio service errors
var (
	ErrNoPortfolio  = errors.New("no portfolio loaded")
	ErrEmptyUpload  = errors.New("uploaded file is empty")
	ErrChartUnknown = errors.New("unknown chart kind")
)
