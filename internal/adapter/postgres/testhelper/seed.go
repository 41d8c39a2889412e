package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting
// test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// Staff is the slice of a seeded staff member tests need.
type Staff struct {
	ID        uuid.UUID
	Email     string
	StaffNo   string
	StaffType domain.StaffType
	Password  string
}

// SeedStaff creates an active staff member with a bcrypt-hashed password.
// The envelope columns are stamped with the system actor, the same way the
// migration seeds the bootstrap row.
func SeedStaff(t *testing.T, pool *pgxpool.Pool, staffType domain.StaffType) Staff {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)

	member := Staff{
		ID:        uuid.New(),
		Email:     "staff-" + suffix + "@school.test",
		StaffNo:   "STF-" + suffix,
		StaffType: staffType,
		Password:  "password-" + suffix,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(member.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("testhelper: SeedStaff hash password: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO staff_members (id, first_name, last_name, email, staff_no, staff_type, password_hash,
		                            created_at, created_by, last_modified_at, last_modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		member.ID, "Test", "Staff "+suffix, member.Email, member.StaffNo, member.StaffType.String(), string(hash),
		now, domain.SystemActorID, now, domain.SystemActorID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedStaff insert: %v", err)
	}

	return member
}

// SeedDepartment creates an active department and returns its id.
func SeedDepartment(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`INSERT INTO departments (id, name, created_at, created_by, last_modified_at, last_modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, "Department "+uniqueSuffix(), now, domain.SystemActorID, now, domain.SystemActorID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDepartment insert: %v", err)
	}

	return id
}

// SeedLevel creates an active academic level with a unique rank.
func SeedLevel(t *testing.T, pool *pgxpool.Pool, rank int) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`INSERT INTO academic_levels (id, name, rank, created_at, created_by, last_modified_at, last_modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, "Level "+uniqueSuffix(), rank, now, domain.SystemActorID, now, domain.SystemActorID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLevel insert: %v", err)
	}

	return id
}

// SeedStudent creates an active student, optionally attached to a level.
func SeedStudent(t *testing.T, pool *pgxpool.Pool, levelID *uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`INSERT INTO students (id, first_name, last_name, admission_no, level_id,
		                       created_at, created_by, last_modified_at, last_modified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, "Student", "Test "+suffix, "ADM-"+suffix, levelID,
		now, domain.SystemActorID, now, domain.SystemActorID,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedStudent insert: %v", err)
	}

	return id
}
