package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patientmesh/mesh/services/patient-service/internal/domain"
	"github.com/patientmesh/mesh/services/patient-service/internal/ports"
	"gorm.io/gorm"
)

// openTestDB connects to PATIENT_TEST_DB_URL and skips when it is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("PATIENT_TEST_DB_URL")
	if dsn == "" {
		t.Skip("PATIENT_TEST_DB_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn, 20)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testEmail(t *testing.T, db *gorm.DB) string {
	t.Helper()
	email := fmt.Sprintf("pg-%s@x.com", uuid.NewString())
	t.Cleanup(func() {
		db.Exec("DELETE FROM patients WHERE email = ?", email)
	})
	return email
}

func createParams(email string) ports.CreatePatientParams {
	return ports.CreatePatientParams{
		ID: uuid.New(),
		Patient: domain.NewPatient{
			Name:             "Jane Doe",
			Email:            email,
			Address:          "1 Rd",
			DateOfBirth:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestPatientRepositoryConcurrentSameEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewPatientRepository(db)
	email := testEmail(t, db)

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.Create(context.Background(), createParams(email))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("expected one success, got %d successes and %d conflicts", successes, conflicts)
	}
}

func TestPatientRepositorySoftDeleteFreesEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewPatientRepository(db)
	ctx := context.Background()
	email := testEmail(t, db)

	first, err := repo.Create(ctx, createParams(email))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, first.ID, time.Now().UTC()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted patient must be gone, got %v", err)
	}
	if err := repo.Delete(ctx, first.ID, time.Now().UTC()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
	if _, err := repo.Create(ctx, createParams(email)); err != nil {
		t.Fatalf("email must be reusable after delete: %v", err)
	}
}

func TestPatientRepositoryUpdateEmailConflict(t *testing.T) {
	db := openTestDB(t)
	repo := NewPatientRepository(db)
	ctx := context.Background()
	janeEmail := testEmail(t, db)
	johnEmail := testEmail(t, db)

	jane, err := repo.Create(ctx, createParams(janeEmail))
	if err != nil {
		t.Fatalf("create jane: %v", err)
	}
	if _, err := repo.Create(ctx, createParams(johnEmail)); err != nil {
		t.Fatalf("create john: %v", err)
	}
	_, err = repo.Update(ctx, ports.UpdatePatientParams{
		ID:    jane.ID,
		Patch: domain.PatientPatch{Email: &johnEmail},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
