package labels

// Merger is a single-use PDF merge queue. Implementations collect input
// files with AddPDF and write the combined document with Merge.
//
// The capability is optional: a Waybill constructed with a nil factory
// reports ErrMergeUnavailable instead of merging.
type Merger interface {
	// AddPDF appends a PDF file to the merge queue. The pages selector
	// follows the merge backend's syntax; "all" selects every page.
	AddPDF(path string, pages string) error

	// Merge writes the combined document to outPath.
	Merge(outPath string) error
}

// MergerFactory hands out a fresh merge queue per waybill build.
type MergerFactory func() Merger
