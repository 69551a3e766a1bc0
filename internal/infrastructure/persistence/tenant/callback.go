package tenant

import (
	"reflect"

	"gorm.io/gorm"
)

const guardCallback = "tenant:guard_create"

// RegisterGuard installs a create callback that rejects rows whose tenant
// column is empty. Tables without the column are not affected.
func RegisterGuard(db *gorm.DB) error {
	return db.Callback().Create().Before("gorm:create").Register(guardCallback, guardCreate)
}

func guardCreate(db *gorm.DB) {
	if db.Statement.Schema == nil {
		return
	}
	field := db.Statement.Schema.LookUpField(Column)
	if field == nil {
		return
	}

	ctx := db.Statement.Context
	rv := reflect.Indirect(db.Statement.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if _, zero := field.ValueOf(ctx, reflect.Indirect(rv.Index(i))); zero {
				_ = db.AddError(ErrTenantIDRequired)
				return
			}
		}
	case reflect.Struct:
		if _, zero := field.ValueOf(ctx, rv); zero {
			_ = db.AddError(ErrTenantIDRequired)
		}
	}
}
