// Package dto defines the wire shapes of the data-service API.
package dto

import "encoding/json"

// EnvelopeCodeOK is the provider's success code.
const EnvelopeCodeOK = 200

// Envelope wraps every data-service response. Data is kept raw because its
// element fields arrive loosely typed (numbers or numeric strings) and are
// coerced field by field.
type Envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// BatchPriceRequest is the POST body of the batch price endpoint.
type BatchPriceRequest struct {
	Symbols []string `json:"symbols"`
}
