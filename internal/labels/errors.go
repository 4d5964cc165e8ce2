package labels

import "errors"

// Sentinel errors for label file and merge handling.
var (
	// ErrInvalidPath indicates a label path resolved outside the storage root.
	ErrInvalidPath = errors.New("invalid label file path")

	// ErrWriteFailed indicates a label file could not be written.
	ErrWriteFailed = errors.New("label file cannot be saved")

	// ErrDeleteFailed indicates an existing label file could not be removed.
	ErrDeleteFailed = errors.New("label file could not be deleted")

	// ErrFormatMismatch indicates a merge input was not a PDF file.
	ErrFormatMismatch = errors.New("not all the file formats are the same")

	// ErrMergeUnavailable indicates the PDF merge capability is absent.
	// Callers should offer per-file download instead.
	ErrMergeUnavailable = errors.New("merge capability unavailable, download files individually")

	// ErrNothingToMerge indicates no shipment label file existed for the order.
	ErrNothingToMerge = errors.New("no label files available to merge")

	// ErrWaybillNotFound indicates an order's waybill has not been merged yet.
	ErrWaybillNotFound = errors.New("waybill not found")
)
