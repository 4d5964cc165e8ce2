package dhlecs_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func TestNormalizeLabel_MultiPiece(t *testing.T) {
	resp := &dhlecs.LabelResponse{
		LabelResponse: dhlecs.LabelEnvelope{
			BD: dhlecs.LabelBD{
				ResponseStatus: dhlecs.ResponseStatus{Code: 200, Message: "OK"},
				Labels: []dhlecs.LabelRecord{
					{
						ShipmentID: "shp-1",
						Pieces: []dhlecs.LabelPiece{
							{ShipmentPieceID: "1", DeliveryConfirmationNo: "X", Content: b64("piece one")},
							{ShipmentPieceID: "2", DeliveryConfirmationNo: "X", Content: b64("piece two")},
						},
					},
				},
			},
		},
	}

	records, err := dhlecs.NormalizeLabel(resp)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "X.1", records[0].Barcode)
	assert.Equal(t, "X", records[0].TrackingNumber)
	assert.Equal(t, []byte("piece one"), records[0].Content)

	assert.Equal(t, "X.2", records[1].Barcode)
	assert.Equal(t, "X", records[1].TrackingNumber)
	assert.Equal(t, []byte("piece two"), records[1].Content)
}

func TestNormalizeLabel_SinglePiece(t *testing.T) {
	resp := &dhlecs.LabelResponse{
		LabelResponse: dhlecs.LabelEnvelope{
			BD: dhlecs.LabelBD{
				ResponseStatus: dhlecs.ResponseStatus{Code: 200, Message: "OK"},
				Labels: []dhlecs.LabelRecord{
					{
						ShipmentID:             "shp-2",
						DeliveryConfirmationNo: "CN123456789DE",
						Content:                b64("single label"),
					},
				},
			},
		},
	}

	records, err := dhlecs.NormalizeLabel(resp)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "CN123456789DE", records[0].Barcode)
	assert.Equal(t, "CN123456789DE", records[0].TrackingNumber)
	assert.Equal(t, []byte("single label"), records[0].Content)
}

func TestNormalizeLabel_SinglePiece_ShipmentIDFallback(t *testing.T) {
	resp := &dhlecs.LabelResponse{
		LabelResponse: dhlecs.LabelEnvelope{
			BD: dhlecs.LabelBD{
				ResponseStatus: dhlecs.ResponseStatus{Code: 200, Message: "OK"},
				Labels: []dhlecs.LabelRecord{
					{ShipmentID: "Y", Content: b64("fallback label")},
				},
			},
		},
	}

	records, err := dhlecs.NormalizeLabel(resp)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Y", records[0].Barcode)
	assert.Equal(t, "Y", records[0].TrackingNumber)
}

func TestNormalizeLabel_StructuredFailure(t *testing.T) {
	resp := &dhlecs.LabelResponse{
		LabelResponse: dhlecs.LabelEnvelope{
			BD: dhlecs.LabelBD{
				ResponseStatus: dhlecs.ResponseStatus{
					Code:    400,
					Message: "Invalid item",
					MessageDetails: []dhlecs.MessageDetail{
						{MessageDetail: "barcode unknown"},
						{MessageDetail: "second detail is ignored"},
					},
				},
			},
		},
	}

	_, err := dhlecs.NormalizeLabel(resp)
	require.Error(t, err)

	var apiErr *dhlecs.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, []string{"Invalid item", "barcode unknown"}, apiErr.Messages)
	assert.Contains(t, err.Error(), "Invalid item")
	assert.Contains(t, err.Error(), "barcode unknown")
}

func TestNormalizeLabel_NoLabels(t *testing.T) {
	resp := &dhlecs.LabelResponse{
		LabelResponse: dhlecs.LabelEnvelope{
			BD: dhlecs.LabelBD{
				ResponseStatus: dhlecs.ResponseStatus{Code: 200, Message: "OK"},
			},
		},
	}

	_, err := dhlecs.NormalizeLabel(resp)
	assert.Error(t, err)
}

func TestNormalizeLabel_BadBase64(t *testing.T) {
	resp := &dhlecs.LabelResponse{
		LabelResponse: dhlecs.LabelEnvelope{
			BD: dhlecs.LabelBD{
				ResponseStatus: dhlecs.ResponseStatus{Code: 200, Message: "OK"},
				Labels: []dhlecs.LabelRecord{
					{DeliveryConfirmationNo: "Z", Content: "not-base64!!!"},
				},
			},
		},
	}

	_, err := dhlecs.NormalizeLabel(resp)
	assert.Error(t, err)
}
