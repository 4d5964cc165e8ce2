package labels

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFCPUMerger merges PDF files using the pdfcpu library.
type PDFCPUMerger struct {
	files []string
}

// NewPDFCPUMerger returns a MergerFactory backed by pdfcpu.
func NewPDFCPUMerger() MergerFactory {
	return func() Merger {
		return &PDFCPUMerger{}
	}
}

// AddPDF appends a file to the merge queue. pdfcpu merges whole documents,
// so only the "all" pages selector is supported.
func (m *PDFCPUMerger) AddPDF(path string, pages string) error {
	if pages != "" && pages != "all" {
		return fmt.Errorf("unsupported page selector %q", pages)
	}
	m.files = append(m.files, path)
	return nil
}

// Merge writes the combined document to outPath.
func (m *PDFCPUMerger) Merge(outPath string) error {
	if err := api.MergeCreateFile(m.files, outPath, false, nil); err != nil {
		return fmt.Errorf("merging %d label files: %w", len(m.files), err)
	}
	return nil
}

var _ Merger = (*PDFCPUMerger)(nil)
