// Package tenant scopes GORM statements to a single tenant.
//
// Repositories filter every read through Scope:
//
//	db.Scopes(tenant.Scope(tenantID)).Where("id = ?", id).First(&row)
//
// and RegisterGuard refuses inserts of tenant-owned rows that carry no tenant.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant column of every tenant-owned table
const Column = "tenant_id"

// ErrTenantIDRequired is returned when a statement has no tenant to scope to
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope restricts a statement to tenantID. A nil tenant fails the statement
// instead of matching nothing.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: Column},
			Value:  tenantID,
		})
	}
}
