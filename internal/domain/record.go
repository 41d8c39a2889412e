// Package domain contains the core types shared by all layers: the managed
// entity kinds, the common record envelope, query specifications, audit
// records, and the error taxonomy.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies one managed entity type. The set of kinds is closed and
// declared in the catalog; the lifecycle engine is parameterized over it.
type Kind string

const (
	KindAcademicSession   Kind = "academic_session"
	KindAcademicTerm      Kind = "academic_term"
	KindAcademicLevel     Kind = "academic_level"
	KindDepartment        Kind = "department"
	KindSchoolClass       Kind = "school_class"
	KindSubject           Kind = "subject"
	KindStudent           Kind = "student"
	KindGuardian          Kind = "guardian"
	KindStaff             Kind = "staff"
	KindSubjectEnrollment Kind = "subject_enrollment"
	KindTeacherAssignment Kind = "teacher_assignment"
	KindGrade             Kind = "grade"
	KindGradeTotal        Kind = "grade_total"
	KindRepetition        Kind = "repetition"
	KindPromotion         Kind = "promotion"
	KindGraduation        Kind = "graduation"
	KindTransfer          Kind = "transfer"
	KindStudentDocument   Kind = "student_document"
	KindAward             Kind = "award"
)

func (k Kind) String() string { return string(k) }

// Record is the common envelope every managed entity shares. Kind-specific
// attributes live in Attrs keyed by column name; the audit and archive
// fields are owned by the lifecycle engine and never written by callers.
type Record struct {
	ID   uuid.UUID
	Kind Kind

	Attrs map[string]any

	IsArchived bool

	CreatedAt      time.Time
	CreatedBy      uuid.UUID
	LastModifiedAt time.Time
	LastModifiedBy uuid.UUID

	// Archive triple: either all three are set (archived) or all nil (active).
	ArchivedAt    *time.Time
	ArchivedBy    *uuid.UUID
	ArchiveReason *string
}

// Attr returns a kind-specific attribute value, or nil when absent.
func (r *Record) Attr(name string) any {
	if r.Attrs == nil {
		return nil
	}
	return r.Attrs[name]
}

// StringAttr returns an attribute as a string. Non-string and absent values
// yield "".
func (r *Record) StringAttr(name string) string {
	s, _ := r.Attr(name).(string)
	return s
}

// SetAttr assigns a kind-specific attribute, allocating the map if needed.
func (r *Record) SetAttr(name string, value any) {
	if r.Attrs == nil {
		r.Attrs = make(map[string]any)
	}
	r.Attrs[name] = value
}

// Clone returns a deep copy of the record. The attribute map is copied one
// level deep, which is sufficient for the scalar values the store produces.
func (r *Record) Clone() *Record {
	cp := *r
	if r.Attrs != nil {
		cp.Attrs = make(map[string]any, len(r.Attrs))
		for k, v := range r.Attrs {
			cp.Attrs[k] = v
		}
	}
	if r.ArchivedAt != nil {
		t := *r.ArchivedAt
		cp.ArchivedAt = &t
	}
	if r.ArchivedBy != nil {
		id := *r.ArchivedBy
		cp.ArchivedBy = &id
	}
	if r.ArchiveReason != nil {
		s := *r.ArchiveReason
		cp.ArchiveReason = &s
	}
	return &cp
}

// StaffType discriminates the staff variants collapsed into a single kind.
type StaffType string

const (
	StaffTypeEducator StaffType = "EDUCATOR"
	StaffTypeAdmin    StaffType = "ADMIN"
	StaffTypeSupport  StaffType = "SUPPORT"
	StaffTypeSystem   StaffType = "SYSTEM"
)

func (s StaffType) String() string { return string(s) }

func (s StaffType) IsValid() bool {
	switch s {
	case StaffTypeEducator, StaffTypeAdmin, StaffTypeSupport, StaffTypeSystem:
		return true
	}
	return false
}
