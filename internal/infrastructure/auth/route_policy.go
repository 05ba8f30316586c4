package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/you/cyberportal/domain"
)

// RoutePolicy decides which role may reach which portal route. Policies
// are persisted through the gorm adapter so operational edits survive a
// restart; on an empty table the portal defaults are seeded.
type RoutePolicy struct {
	E *casbin.Enforcer
}

// NewRoutePolicy builds the enforcer from the model file and the policy
// table in db.
func NewRoutePolicy(db *gorm.DB, modelPath string) (*RoutePolicy, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize casbin adapter: %w", err)
	}
	e, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, fmt.Errorf("failed to build casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load casbin policies: %w", err)
	}
	rp := &RoutePolicy{E: e}
	if err := rp.seedDefaults(); err != nil {
		return nil, err
	}
	return rp, nil
}

// NewRoutePolicyFromEnforcer wraps an already-built enforcer, for tests.
func NewRoutePolicyFromEnforcer(e *casbin.Enforcer) *RoutePolicy {
	return &RoutePolicy{E: e}
}

// Allow reports whether the role may access path with method.
func (rp *RoutePolicy) Allow(role domain.Role, path, method string) (bool, error) {
	return rp.E.Enforce(role.Subject(), path, method)
}

func (rp *RoutePolicy) seedDefaults() error {
	policies, err := rp.E.GetPolicy()
	if err != nil {
		return fmt.Errorf("failed to read casbin policies: %w", err)
	}
	if len(policies) > 0 {
		return nil
	}

	defaults := [][]string{
		{"role_user", "/dashboard", "GET"},
		{"role_user", "/profile", "(GET|POST)"},
		{"role_user", "/report-crime", "(GET|POST)"},
		{"role_user", "/case-status", "GET"},
		{"role_user", "/fact-checker", "(GET|POST)"},
		{"role_user", "/logout", "POST"},
		{"role_admin", "/admin", "GET"},
		{"role_admin", "/admin/*", "(GET|POST|PUT|DELETE)"},
	}
	for _, p := range defaults {
		if _, err := rp.E.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to seed policy %v: %w", p, err)
		}
	}
	// Admins inherit every user route.
	if _, err := rp.E.AddGroupingPolicy("role_admin", "role_user"); err != nil {
		return fmt.Errorf("failed to seed role inheritance: %w", err)
	}
	return rp.E.SavePolicy()
}
