package service

import "errors"

// Model library errors. Implementations wrap these with %w.
var (
	ErrResourceResolution = errors.New("resource resolution failed")
	ErrModelLoad          = errors.New("model load failed")
	ErrInference          = errors.New("inference failed")
	ErrInputTooLong       = errors.New("input exceeds maximum sequence length")
	ErrNoLabels           = errors.New("no candidate labels")
)
