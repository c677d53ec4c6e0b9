package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// WSBlockNumber sends eth_blockNumber over a WebSocket connection and returns the result.
func WSBlockNumber(ctx context.Context, wsURL string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, BlockNumberPayload()); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return ParseResult(msg)
}
