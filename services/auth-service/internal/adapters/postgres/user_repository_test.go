package postgres

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/patientmesh/mesh/services/auth-service/internal/domain"
	"gorm.io/gorm"
)

func TestStorageError(t *testing.T) {
	t.Parallel()

	if !errors.Is(storageError(gorm.ErrRecordNotFound), domain.ErrNotFound) {
		t.Fatalf("record not found must map to domain not found")
	}
	if !errors.Is(storageError(errors.New("connection reset")), domain.ErrStorageUnavailable) {
		t.Fatalf("driver failures must map to storage unavailable")
	}
	if storageError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestEmbeddedMigrationPresent(t *testing.T) {
	t.Parallel()

	raw, err := migrationFS.ReadFile("migrations/0001_users.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("empty migration")
	}
}

func TestMigrationNamesSorted(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/0002_roles.sql": {Data: []byte("SELECT 1")},
		"migrations/0001_users.sql": {Data: []byte("SELECT 1")},
		"migrations/README.md":      {Data: []byte("notes")},
	}
	names, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if want := []string{"0001_users.sql", "0002_roles.sql"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	embedded, err := migrationNames(migrationFS)
	if err != nil || len(embedded) != 1 || embedded[0] != "0001_users.sql" {
		t.Fatalf("unexpected embedded migrations %v (%v)", embedded, err)
	}
}
