package container

import "errors"

// Errors returned by container requests and services
var (
	ErrSourceNotFound       = errors.New("source file does not exist")
	ErrUnsupportedFormat    = errors.New("unsupported container format")
	ErrSamePath             = errors.New("output path must differ from source path")
	ErrInvalidOffset        = errors.New("invalid start time offset")
	ErrOffsetBeyondDuration = errors.New("start time offset is beyond source duration")
	ErrEmptyOutput          = errors.New("output container has no tracks")
)
