// Package extralife is a minimal client for the Extra Life (DonorDrive)
// public API. Only one read is needed: the current donation list for a team.
//
// The API has no delta or cursor semantics, so every call transfers the full
// snapshot; deduplication against local state happens downstream.
package extralife

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Extra Life endpoint.
const DefaultBaseURL = "https://www.extra-life.org"

// Donation is one item of the upstream donation list. Optional fields are
// pointers so a missing value is distinguishable from an empty one; callers
// apply their own defaults.
type Donation struct {
	DonationID     string   `json:"donationID"`
	DisplayName    *string  `json:"displayName"`
	RecipientName  *string  `json:"recipientName"`
	Amount         float64  `json:"amount"`
	Message        *string  `json:"message"`
	AvatarImageURL *string  `json:"avatarImageURL"`
	CreatedDateUTC *string  `json:"createdDateUTC"`
}

// Client fetches donation lists over HTTP with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client against baseURL (DefaultBaseURL if empty). The
// timeout bounds the whole fetch; a slow upstream fails the attempt instead
// of blocking the caller.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// TeamDonations returns the current donation list for a team.
func (c *Client) TeamDonations(ctx context.Context, teamID string) ([]Donation, error) {
	url := fmt.Sprintf("%s/api/teams/%s/donations", c.baseURL, teamID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch donations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for diagnostics, then discard.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var donations []Donation
	if err := json.NewDecoder(resp.Body).Decode(&donations); err != nil {
		return nil, fmt.Errorf("decode donations: %w", err)
	}

	return donations, nil
}
