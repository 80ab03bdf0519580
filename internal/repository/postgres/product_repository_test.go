package postgres

import (
	"context"
	"testing"

	"marketplace/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds SQL without a server and records the vars of every INSERT.
func dryRunDB(t *testing.T) (*gorm.DB, *[]interface{}) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	var vars []interface{}
	err = db.Callback().Create().After("gorm:create").Register("test:capture_vars", func(tx *gorm.DB) {
		vars = append([]interface{}{}, tx.Statement.Vars...)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	return db, &vars
}

func TestProductRepository_CreateKeepsIsActive(t *testing.T) {
	tests := []struct {
		name   string
		active bool
	}{
		{name: "inactive product", active: false},
		{name: "active product", active: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, vars := dryRunDB(t)
			repo := NewProductRepository(db)

			p := &domain.Product{ID: "0b7e3c52-4c1f-4c0e-9a43-2f6f0f1c6a11", Name: "Mug", IsActive: tt.active}
			if err := repo.Create(context.Background(), p); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			var bools []bool
			for _, v := range *vars {
				if b, ok := v.(bool); ok {
					bools = append(bools, b)
				}
			}
			if len(bools) != 1 || bools[0] != tt.active {
				t.Errorf("is_active written as %v, want [%v]", bools, tt.active)
			}
		})
	}
}
