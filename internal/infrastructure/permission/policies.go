package permission

import (
	"fmt"

	"github.com/Mordecai-Wambua/User-Auth/internal/domain/account"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const (
	ResourceAccounts = "accounts"

	ActionRead   = "read"
	ActionDelete = "delete"
)

// DefaultPolicies mirror the admin site: superusers manage accounts, staff
// can look.
var DefaultPolicies = [][]string{
	{account.RoleAdmin, ResourceAccounts, ActionRead},
	{account.RoleAdmin, ResourceAccounts, ActionDelete},
	{account.RoleStaff, ResourceAccounts, ActionRead},
}

// SeedDefaultPolicies adds any missing default policy. Existing rows are kept.
func SeedDefaultPolicies(e *Enforcer, log logger.Interface) error {
	for _, policy := range DefaultPolicies {
		if err := e.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			log.Errorw("failed to add account permission policy",
				"error", err,
				"role", policy[0],
				"resource", policy[1],
				"action", policy[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w",
				policy[0], policy[1], policy[2], err)
		}
	}

	log.Info("account permissions initialized successfully")
	return nil
}
