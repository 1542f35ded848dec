package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-scanning/internal/models"
)

// VerifyResult is the server's answer to one verification call. A non-nil
// error from Verify means the transport failed and the claim should be
// queued; a VerifyResult always carries a terminal verdict.
type VerifyResult struct {
	Accepted    bool
	AlreadyUsed bool
	Message     string
	Info        *models.TicketInfo
	UsedAt      *time.Time
}

// TicketVerifier is the kiosk's view of the verification service.
type TicketVerifier interface {
	Verify(ctx context.Context, token string) (*VerifyResult, error)
}

// Client talks JSON-over-HTTP to the scan service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	UsedAt     *time.Time         `json:"usedAt,omitempty"`
	TicketInfo *models.TicketInfo `json:"ticketInfo,omitempty"`
}

func (c *Client) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/verify-ticket", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	result := &VerifyResult{
		Message: decoded.Message,
		Info:    decoded.TicketInfo,
		UsedAt:  decoded.UsedAt,
	}
	switch {
	case resp.StatusCode == http.StatusOK && decoded.Success:
		result.Accepted = true
	case resp.StatusCode == http.StatusConflict:
		result.AlreadyUsed = true
	}
	return result, nil
}

// Healthy probes the service's health endpoint. Used as the kiosk's network
// reachability check.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type statsResponse struct {
	Success bool             `json:"success"`
	Stats   models.ScanStats `json:"stats"`
}

// FetchStats retrieves the aggregate scan counters from the service.
func (c *Client) FetchStats(ctx context.Context) (*models.ScanStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/scan-stats", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	if !decoded.Success {
		return nil, fmt.Errorf("stats request rejected with status %d", resp.StatusCode)
	}
	return &decoded.Stats, nil
}
