package dhlecs

import (
	"encoding/base64"
	"fmt"
)

// PieceRecord is one printable label piece in canonical form, normalized
// from either of the carrier's two label response shapes.
type PieceRecord struct {
	// Barcode identifies the piece. Multi-piece labels use
	// "<deliveryConfirmationNo>.<shipmentPieceID>"; single-piece labels use
	// the deliveryConfirmationNo, falling back to the shipmentID.
	Barcode string

	// TrackingNumber is the shipment-level tracking identifier (AWB).
	TrackingNumber string

	// Content is the decoded PDF label document.
	Content []byte
}

// NormalizeLabel converts a raw label response into canonical piece records.
//
// A structured response status other than 200 is a terminal failure and is
// returned as an *APIError carrying the carrier's message and the first
// message detail.
func NormalizeLabel(resp *LabelResponse) ([]PieceRecord, error) {
	bd := resp.LabelResponse.BD

	if bd.ResponseStatus.Code != 200 {
		messages := []string{bd.ResponseStatus.Message}
		if len(bd.ResponseStatus.MessageDetails) > 0 {
			messages = append(messages, bd.ResponseStatus.MessageDetails[0].MessageDetail)
		}
		return nil, &APIError{StatusCode: bd.ResponseStatus.Code, Messages: messages}
	}

	if len(bd.Labels) == 0 {
		return nil, fmt.Errorf("label response contains no labels")
	}

	label := bd.Labels[0]

	// Multi-piece shape: one record per piece.
	if len(label.Pieces) > 0 {
		records := make([]PieceRecord, 0, len(label.Pieces))
		for _, piece := range label.Pieces {
			content, err := base64.StdEncoding.DecodeString(piece.Content)
			if err != nil {
				return nil, fmt.Errorf("decoding label content for piece %s: %w", piece.ShipmentPieceID, err)
			}
			records = append(records, PieceRecord{
				Barcode:        piece.DeliveryConfirmationNo + "." + piece.ShipmentPieceID,
				TrackingNumber: piece.DeliveryConfirmationNo,
				Content:        content,
			})
		}
		return records, nil
	}

	// Single-piece shape.
	barcode := label.DeliveryConfirmationNo
	if barcode == "" {
		barcode = label.ShipmentID
	}
	content, err := base64.StdEncoding.DecodeString(label.Content)
	if err != nil {
		return nil, fmt.Errorf("decoding label content for %s: %w", barcode, err)
	}

	return []PieceRecord{{
		Barcode:        barcode,
		TrackingNumber: barcode,
		Content:        content,
	}}, nil
}
