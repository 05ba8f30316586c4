package auth

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/you/cyberportal/domain"
)

func newTestPolicy(t *testing.T) *RoutePolicy {
	t.Helper()
	db := openMemoryDB(t)
	rp, err := NewRoutePolicy(db, "../../../config/model.conf")
	if err != nil {
		t.Fatalf("failed to build route policy: %v", err)
	}
	return rp
}

var memDBSeq atomic.Int64

// openMemoryDB opens a uniquely named shared-cache in-memory sqlite
// database: with plain "file::memory:" every pooled connection gets its
// own private database, hiding the migrated tables.
func openMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routepolicy%d?mode=memory&cache=shared", memDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return db
}

func TestRoutePolicy_Defaults(t *testing.T) {
	rp := newTestPolicy(t)

	tests := []struct {
		name   string
		role   domain.Role
		path   string
		method string
		want   bool
	}{
		{"user reaches dashboard", domain.RoleUser, "/dashboard", "GET", true},
		{"user submits a report", domain.RoleUser, "/report-crime", "POST", true},
		{"user checks case status", domain.RoleUser, "/case-status", "GET", true},
		{"user cannot post case status", domain.RoleUser, "/case-status", "POST", false},
		{"user blocked from admin landing", domain.RoleUser, "/admin", "GET", false},
		{"user blocked from admin subroutes", domain.RoleUser, "/admin/cases", "GET", false},
		{"admin reaches landing", domain.RoleAdmin, "/admin", "GET", true},
		{"admin reaches nested routes", domain.RoleAdmin, "/admin/cases/update", "POST", true},
		{"admin inherits user routes", domain.RoleAdmin, "/dashboard", "GET", true},
		{"admin inherits logout", domain.RoleAdmin, "/logout", "POST", true},
		{"nobody reaches unknown routes", domain.RoleUser, "/internal/debug", "GET", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rp.Allow(tt.role, tt.path, tt.method)
			if err != nil {
				t.Fatalf("Allow: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allow(%s, %s, %s) = %v, expected %v", tt.role, tt.path, tt.method, got, tt.want)
			}
		})
	}
}

func TestRoutePolicy_SeedOnlyOnEmptyTable(t *testing.T) {
	db := openMemoryDB(t)

	first, err := NewRoutePolicy(db, "../../../config/model.conf")
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	// An operator edit must survive a rebuild instead of being clobbered
	// by re-seeding.
	if _, err := first.E.RemovePolicy("role_user", "/fact-checker", "(GET|POST)"); err != nil {
		t.Fatalf("remove policy: %v", err)
	}
	if err := first.E.SavePolicy(); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	second, err := NewRoutePolicy(db, "../../../config/model.conf")
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	allowed, err := second.Allow(domain.RoleUser, "/fact-checker", "GET")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if allowed {
		t.Error("removed policy reappeared after rebuild")
	}
}
