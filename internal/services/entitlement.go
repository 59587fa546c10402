package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"modecoach-backend/internal/models"
)

// CanSend reports whether a user may send another chat message. Pro users
// are never gated; free users get FreeMessageLimit user turns per session
// before the paywall.
func CanSend(plan string, userMessageCount, freeLimit int) bool {
	if plan == models.PlanPro {
		return true
	}
	return userMessageCount < freeLimit
}

// CanCreateCoach reports whether a user may create a custom coach.
func CanCreateCoach(plan string) bool {
	return plan == models.PlanPro
}

// Offering is one purchasable package surfaced to the client.
type Offering struct {
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceString string `json:"price_string"`
}

// EntitlementClient talks to the subscription provider. The concrete
// RevenueCat client is swapped for a stub in tests.
type EntitlementClient interface {
	CheckProStatus(ctx context.Context, appUserID string) (bool, error)
	GetOfferings(ctx context.Context, appUserID string) ([]Offering, error)
}

// RevenueCatClient implements EntitlementClient against the RevenueCat
// REST API using the public SDK key. Store purchases happen on-device;
// the backend only re-reads entitlement status afterwards.
type RevenueCatClient struct {
	apiKey      string
	entitlement string
	baseURL     string
	httpClient  *http.Client
}

func NewRevenueCatClient(apiKey, entitlement string) *RevenueCatClient {
	return &RevenueCatClient{
		apiKey:      apiKey,
		entitlement: entitlement,
		baseURL:     "https://api.revenuecat.com/v1",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type rcSubscriberResponse struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate *time.Time `json:"expires_date"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

func (c *RevenueCatClient) CheckProStatus(ctx context.Context, appUserID string) (bool, error) {
	var resp rcSubscriberResponse
	if err := c.get(ctx, "/subscribers/"+url.PathEscape(appUserID), &resp); err != nil {
		return false, err
	}
	ent, ok := resp.Subscriber.Entitlements[c.entitlement]
	if !ok {
		return false, nil
	}
	if ent.ExpiresDate != nil && ent.ExpiresDate.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}

type rcOfferingsResponse struct {
	CurrentOfferingID string `json:"current_offering_id"`
	Offerings         []struct {
		Identifier  string `json:"identifier"`
		Description string `json:"description"`
		Packages    []struct {
			Identifier string `json:"identifier"`
		} `json:"packages"`
	} `json:"offerings"`
}

func (c *RevenueCatClient) GetOfferings(ctx context.Context, appUserID string) ([]Offering, error) {
	var resp rcOfferingsResponse
	if err := c.get(ctx, "/subscribers/"+url.PathEscape(appUserID)+"/offerings", &resp); err != nil {
		return nil, err
	}
	var out []Offering
	for _, off := range resp.Offerings {
		if resp.CurrentOfferingID != "" && off.Identifier != resp.CurrentOfferingID {
			continue
		}
		for _, pkg := range off.Packages {
			out = append(out, Offering{
				Identifier:  pkg.Identifier,
				Title:       off.Identifier,
				Description: off.Description,
			})
		}
	}
	return out, nil
}

func (c *RevenueCatClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build entitlement request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("entitlement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("entitlement provider returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode entitlement response: %w", err)
	}
	return nil
}
