package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the kind of mutation recorded in the audit trail.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionArchive AuditAction = "ARCHIVE"
	AuditActionRestore AuditAction = "RESTORE"
	AuditActionDelete  AuditAction = "DELETE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionArchive,
		AuditActionRestore, AuditActionDelete:
		return true
	}
	return false
}

// AuditRecord is one entry of the append-only audit trail. Written by the
// lifecycle engine in the same transaction as the mutation it describes.
type AuditRecord struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	Kind      Kind
	EntityID  *uuid.UUID
	Action    AuditAction
	Changes   map[string]any
	CreatedAt time.Time
}
