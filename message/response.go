package message

import "encoding/json"

type SuccessResponse struct{ Data json.RawMessage }

func (SuccessResponse) Kind() string { return "Success" }
func (SuccessResponse) isResponse()  {}

type ErrorResponse struct {
	Error string
	Code  int
}

func (ErrorResponse) Kind() string { return "Error" }
func (ErrorResponse) isResponse()  {}

// DataResponse carries query results, e.g. Artemis search hits (§4.8) as a
// JSON array of stored-field maps.
type DataResponse struct{ Data json.RawMessage }

func (DataResponse) Kind() string { return "Data" }
func (DataResponse) isResponse()  {}

type AckResponse struct{ MessageID string }

func (AckResponse) Kind() string { return "Ack" }
func (AckResponse) isResponse()  {}

type StatusResponse struct{ Status json.RawMessage }

func (StatusResponse) Kind() string { return "Status" }
func (StatusResponse) isResponse()  {}
