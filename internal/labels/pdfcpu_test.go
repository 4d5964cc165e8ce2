package labels_test

import (
	"testing"

	"github.com/storeship/dhlbridge/internal/labels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFCPUMerger_AddPDF_PageSelector(t *testing.T) {
	factory := labels.NewPDFCPUMerger()
	merger := factory()

	assert.NoError(t, merger.AddPDF("/tmp/a.pdf", "all"))
	assert.NoError(t, merger.AddPDF("/tmp/b.pdf", ""))
	assert.Error(t, merger.AddPDF("/tmp/c.pdf", "1-3"))
}

func TestPDFCPUMerger_FreshQueuePerBuild(t *testing.T) {
	factory := labels.NewPDFCPUMerger()

	first := factory()
	second := factory()
	require.NotSame(t, first, second)
}
