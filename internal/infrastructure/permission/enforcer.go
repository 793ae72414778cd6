// Package permission guards the admin surface with casbin RBAC. Subjects are
// role names derived from account flags, or account sids granted a role
// explicitly.
package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/constants"
	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer stores policies in the casbin_rule table of db.
func NewEnforcer(db *gorm.DB, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", constants.TableCasbinRules)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

// EnforceAny allows the request when any of subjects is allowed.
func (e *Enforcer) EnforceAny(subjects []string, resource, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, sub := range subjects {
		allowed, err := e.enforcer.Enforce(sub, resource, action)
		if err != nil {
			e.logger.Errorw("permission check failed", "error", err, "subject", sub, "resource", resource, "action", action)
			return false, fmt.Errorf("permission check failed: %w", err)
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

func (e *Enforcer) AddPolicy(role, resource, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(role, resource, action); err != nil {
		e.logger.Errorw("failed to add policy", "error", err)
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

func (e *Enforcer) RemovePolicy(role, resource, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(role, resource, action); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

// AddRoleForAccount grants role to the account with the given sid on top of
// what its flags imply.
func (e *Enforcer) AddRoleForAccount(sid, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddRoleForUser(sid, role); err != nil {
		e.logger.Errorw("failed to add role for account", "error", err, "sid", sid, "role", role)
		return fmt.Errorf("failed to add role for account: %w", err)
	}
	return nil
}

func (e *Enforcer) DeleteRoleForAccount(sid, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.DeleteRoleForUser(sid, role); err != nil {
		e.logger.Errorw("failed to delete role for account", "error", err, "sid", sid, "role", role)
		return fmt.Errorf("failed to delete role for account: %w", err)
	}
	return nil
}

func (e *Enforcer) GetRolesForAccount(sid string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	roles, err := e.enforcer.GetRolesForUser(sid)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for account: %w", err)
	}
	return roles, nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Info("policy reloaded successfully")
	return nil
}
