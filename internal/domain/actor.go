package domain

import "github.com/google/uuid"

// SystemActorID is the reserved actor stamped into audit fields when a
// mutation runs without an authenticated actor (seeders, cron commands,
// internal maintenance). It is seeded as a SYSTEM staff record so the
// audit foreign keys always resolve.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Actor is the authenticated identity performing a mutation.
type Actor struct {
	ID        uuid.UUID
	StaffType StaffType
}

// SystemActor returns the reserved system actor.
func SystemActor() Actor {
	return Actor{ID: SystemActorID, StaffType: StaffTypeSystem}
}
