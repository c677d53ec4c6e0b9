package stack

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultIPLookupURL answers with the caller's public address as plain text.
const DefaultIPLookupURL = "https://api.ipify.org"

// DetectPublicIP asks lookupURL for this host's public address.
func DetectPublicIP(ctx context.Context, client *http.Client, lookupURL string) (string, error) {
	if lookupURL == "" {
		lookupURL = DefaultIPLookupURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to detect public IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup returned status: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("failed to read ip lookup response: %w", err)
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("ip lookup returned %q, not an IP address", ip)
	}
	return ip, nil
}
