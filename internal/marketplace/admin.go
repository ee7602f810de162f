package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const adminToolsPath = "/api/admin-tools/"

// Stats fetches the platform summary counts.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: adminToolsPath + "dashboard/", label: "dashboard"})
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var stats Stats
	if err := dec.Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode dashboard stats: %w", err)
	}
	if stats == nil {
		stats = Stats{}
	}
	return stats, nil
}

// PendingGigs fetches the gigs awaiting approval.
func (c *Client) PendingGigs(ctx context.Context) ([]PendingGig, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: adminToolsPath + "pending_gigs/", label: "pending_gigs"})
	if err != nil {
		return nil, err
	}
	var gigs []PendingGig
	if err := decodeList(body, &gigs); err != nil {
		return nil, fmt.Errorf("decode pending gigs: %w", err)
	}
	return gigs, nil
}

// Reports fetches the abuse reports, newest first.
func (c *Client) Reports(ctx context.Context) ([]AbuseReport, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: adminToolsPath + "reports/", label: "reports"})
	if err != nil {
		return nil, err
	}
	var reports []AbuseReport
	if err := decodeList(body, &reports); err != nil {
		return nil, fmt.Errorf("decode abuse reports: %w", err)
	}
	return reports, nil
}

// ApproveGig marks a pending gig as active.
func (c *Client) ApproveGig(ctx context.Context, gigID string) error {
	return c.adminAction(ctx, "gig", gigID, "approve_gig")
}

// BlockUser deactivates a marketplace account.
func (c *Client) BlockUser(ctx context.Context, userID string) error {
	return c.adminAction(ctx, "user", userID, "block_user")
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.adminAction(ctx, "review", reviewID, "delete_review")
}

func (c *Client) adminAction(ctx context.Context, kind, id, action string) error {
	id, err := ValidateID(kind, id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method: http.MethodPost,
		path:   adminToolsPath + id + "/" + action + "/",
		label:  action,
	})
	return err
}

// ValidateID trims id and rejects values that cannot be a single path segment.
func ValidateID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s id is required: %w", kind, ErrInvalidID)
	}
	if strings.ContainsAny(id, "/?#%\\ ") || id == "." || id == ".." {
		return "", fmt.Errorf("%s id %q: %w", kind, id, ErrInvalidID)
	}
	return id, nil
}

// decodeList accepts a bare JSON array or a paginated {"results": [...]} envelope.
func decodeList[T any](body []byte, out *[]T) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return err
		}
		*out = envelope.Results
	} else if err := json.Unmarshal(trimmed, out); err != nil {
		return err
	}
	if *out == nil {
		*out = []T{}
	}
	return nil
}
