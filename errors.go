package main

import "errors"

var (
	ErrInputNotFound       = errors.New("input file does not exist")
	ErrInvalidThresholds   = errors.New("min threshold must be lower than max threshold")
	ErrThresholdOutOfRange = errors.New("threshold out of range")
	ErrUnknownMode         = errors.New("unknown mode")
	ErrUnsupportedFormat   = errors.New("unsupported image format")
)
