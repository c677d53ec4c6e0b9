package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoResult is returned when a response carries no usable "result" field.
var ErrNoResult = errors.New("response has no result")

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// BlockNumberRequest is the fixed probe every stage sends.
func BlockNumberRequest() Request {
	return Request{JSONRPC: "2.0", Method: "eth_blockNumber", Params: []any{}, ID: 1}
}

// BlockNumberPayload is BlockNumberRequest encoded as
// {"jsonrpc":"2.0","method":"eth_blockNumber","params":[],"id":1}.
func BlockNumberPayload() []byte {
	b, _ := json.Marshal(BlockNumberRequest())
	return b
}

// ParseResult decodes a response body and returns its result as a string.
// Hex and decimal strings are returned as-is, bare numbers are formatted.
func ParseResult(body []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON-RPC response: %w", err)
	}
	if resp.Error != nil {
		return "", resp.Error
	}

	raw := bytes.TrimSpace(resp.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrNoResult
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return n.String(), nil
	}
	return string(raw), nil
}
