package mcp

import "encoding/json"

// successResponse builds a JSON-RPC 2.0 success envelope. The id is
// echoed only when the request carried one.
func successResponse(id any, result any) (resp Response) {
	resp = Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	return resp
}

// errorResponse builds a JSON-RPC 2.0 error envelope. An empty data
// string is dropped from the wire.
func errorResponse(id any, code int, message, data string) (resp Response) {
	resp = Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	return resp
}

// MarshalJSON keeps the success and error shapes mutually exclusive on
// the wire: a success envelope always carries "result", even when the
// tool returned nil, and an error envelope never does. The id is
// emitted for any non-nil value, including zero values.
func (r Response) MarshalJSON() (data []byte, err error) {
	if r.Error != nil {
		data, err = json.Marshal(struct {
			JSONRPC string       `json:"jsonrpc"`
			Error   *ErrorObject `json:"error"`
			ID      any          `json:"id,omitempty"`
		}{r.JSONRPC, r.Error, r.ID})

		return data, err
	}

	data, err = json.Marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		Result  any    `json:"result"`
		ID      any    `json:"id,omitempty"`
	}{r.JSONRPC, r.Result, r.ID})

	return data, err
}
