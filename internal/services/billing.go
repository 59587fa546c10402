package services

import (
	"context"
	"fmt"
	"log"

	"modecoach-backend/internal/models"
	"modecoach-backend/internal/repository"
)

// BillingService keeps the stored plan in sync with the subscription
// provider. Purchases and restores happen on-device against the store; the
// backend's job is to re-read entitlement status and persist the outcome.
type BillingService struct {
	users       *repository.UserRepo
	entitlement EntitlementClient
}

func NewBillingService(users *repository.UserRepo, entitlement EntitlementClient) *BillingService {
	return &BillingService{users: users, entitlement: entitlement}
}

// Sync re-checks entitlement with the provider and persists the resulting
// plan. Returns the plan now in effect.
func (s *BillingService) Sync(ctx context.Context, user *models.User) (string, error) {
	pro, err := s.entitlement.CheckProStatus(ctx, user.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to check entitlement: %w", err)
	}

	plan := models.PlanFree
	if pro {
		plan = models.PlanPro
	}

	if plan != user.Plan {
		if err := s.users.SetPlan(ctx, user.ID, plan); err != nil {
			return "", fmt.Errorf("failed to persist plan change: %w", err)
		}
		log.Printf("Plan for user %s changed %s -> %s", user.ID, user.Plan, plan)
	}
	return plan, nil
}

// Offerings lists purchasable packages for the paywall screen.
func (s *BillingService) Offerings(ctx context.Context, user *models.User) ([]Offering, error) {
	offerings, err := s.entitlement.GetOfferings(ctx, user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load offerings: %w", err)
	}
	return offerings, nil
}
