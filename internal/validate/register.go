package validate

import (
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/lifecycle"
)

// Register wires the standard validators into the engine. Referential
// integrity itself is the database's job; these checks only keep obviously
// malformed values out of storage.
func Register(e *lifecycle.Engine) {
	e.RegisterValidator(domain.KindAcademicSession, "name", SessionYear)
	e.RegisterValidator(domain.KindAcademicSession, "starts_on", OptionalDate)
	e.RegisterValidator(domain.KindAcademicSession, "ends_on", OptionalDate)

	e.RegisterValidator(domain.KindAcademicTerm, "session_id", UUIDRef)
	e.RegisterValidator(domain.KindAcademicTerm, "name", NonEmptyString)
	e.RegisterValidator(domain.KindAcademicTerm, "starts_on", OptionalDate)
	e.RegisterValidator(domain.KindAcademicTerm, "ends_on", OptionalDate)

	e.RegisterValidator(domain.KindAcademicLevel, "name", NonEmptyString)
	e.RegisterValidator(domain.KindAcademicLevel, "description", OptionalString)
	e.RegisterValidator(domain.KindAcademicLevel, "rank", PositiveInt)

	e.RegisterValidator(domain.KindDepartment, "name", NonEmptyString)
	e.RegisterValidator(domain.KindDepartment, "description", OptionalString)

	e.RegisterValidator(domain.KindSchoolClass, "name", NonEmptyString)
	e.RegisterValidator(domain.KindSchoolClass, "level_id", UUIDRef)
	e.RegisterValidator(domain.KindSchoolClass, "department_id", OptionalUUIDRef)
	e.RegisterValidator(domain.KindSchoolClass, "teacher_id", OptionalUUIDRef)

	e.RegisterValidator(domain.KindSubject, "name", NonEmptyString)
	e.RegisterValidator(domain.KindSubject, "code", NonEmptyString)
	e.RegisterValidator(domain.KindSubject, "department_id", OptionalUUIDRef)

	e.RegisterValidator(domain.KindStudent, "first_name", NonEmptyString)
	e.RegisterValidator(domain.KindStudent, "last_name", NonEmptyString)
	e.RegisterValidator(domain.KindStudent, "gender", Optional(OneOf("MALE", "FEMALE")))
	e.RegisterValidator(domain.KindStudent, "date_of_birth", OptionalDate)
	e.RegisterValidator(domain.KindStudent, "admission_no", NonEmptyString)
	e.RegisterValidator(domain.KindStudent, "admission_date", OptionalDate)
	e.RegisterValidator(domain.KindStudent, "level_id", OptionalUUIDRef)
	e.RegisterValidator(domain.KindStudent, "class_id", OptionalUUIDRef)
	e.RegisterValidator(domain.KindStudent, "department_id", OptionalUUIDRef)
	e.RegisterValidator(domain.KindStudent, "guardian_id", OptionalUUIDRef)

	e.RegisterValidator(domain.KindGuardian, "first_name", NonEmptyString)
	e.RegisterValidator(domain.KindGuardian, "last_name", NonEmptyString)
	e.RegisterValidator(domain.KindGuardian, "phone", Phone)
	e.RegisterValidator(domain.KindGuardian, "email", OptionalEmail)
	e.RegisterValidator(domain.KindGuardian, "address", OptionalString)
	e.RegisterValidator(domain.KindGuardian, "occupation", OptionalString)

	e.RegisterValidator(domain.KindStaff, "first_name", NonEmptyString)
	e.RegisterValidator(domain.KindStaff, "last_name", NonEmptyString)
	e.RegisterValidator(domain.KindStaff, "email", Email)
	e.RegisterValidator(domain.KindStaff, "phone", Optional(Phone))
	e.RegisterValidator(domain.KindStaff, "staff_no", NonEmptyString)
	e.RegisterValidator(domain.KindStaff, "staff_type", StaffTypeValid)
	e.RegisterValidator(domain.KindStaff, "department_id", OptionalUUIDRef)

	e.RegisterValidator(domain.KindSubjectEnrollment, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindSubjectEnrollment, "subject_id", UUIDRef)
	e.RegisterValidator(domain.KindSubjectEnrollment, "term_id", UUIDRef)
	e.RegisterValidator(domain.KindSubjectEnrollment, "status", Optional(OneOf("ENROLLED", "DROPPED", "COMPLETED")))

	e.RegisterValidator(domain.KindTeacherAssignment, "staff_id", UUIDRef)
	e.RegisterValidator(domain.KindTeacherAssignment, "subject_id", UUIDRef)
	e.RegisterValidator(domain.KindTeacherAssignment, "class_id", UUIDRef)

	e.RegisterValidator(domain.KindGrade, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindGrade, "subject_id", UUIDRef)
	e.RegisterValidator(domain.KindGrade, "term_id", UUIDRef)
	e.RegisterValidator(domain.KindGrade, "ca_score", OptionalScore)
	e.RegisterValidator(domain.KindGrade, "exam_score", OptionalScore)
	e.RegisterValidator(domain.KindGrade, "total_score", OptionalScore)
	e.RegisterValidator(domain.KindGrade, "grade_letter", OptionalString)
	e.RegisterValidator(domain.KindGrade, "remark", OptionalString)

	e.RegisterValidator(domain.KindGradeTotal, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindGradeTotal, "term_id", UUIDRef)
	e.RegisterValidator(domain.KindGradeTotal, "total_score", Optional(func(value any) (any, error) {
		f, ok := asFloat(value)
		if !ok || f < 0 {
			return nil, errNonNegativeNumber
		}
		return f, nil
	}))
	e.RegisterValidator(domain.KindGradeTotal, "average_score", OptionalScore)
	e.RegisterValidator(domain.KindGradeTotal, "subjects_count", Optional(PositiveInt))
	e.RegisterValidator(domain.KindGradeTotal, "position", Optional(PositiveInt))

	e.RegisterValidator(domain.KindRepetition, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindRepetition, "level_id", UUIDRef)
	e.RegisterValidator(domain.KindRepetition, "session_id", UUIDRef)
	e.RegisterValidator(domain.KindRepetition, "reason", OptionalString)

	e.RegisterValidator(domain.KindPromotion, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindPromotion, "from_level_id", UUIDRef)
	e.RegisterValidator(domain.KindPromotion, "to_level_id", UUIDRef)
	e.RegisterValidator(domain.KindPromotion, "session_id", UUIDRef)

	e.RegisterValidator(domain.KindGraduation, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindGraduation, "session_id", UUIDRef)
	e.RegisterValidator(domain.KindGraduation, "graduated_on", OptionalDate)

	e.RegisterValidator(domain.KindTransfer, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindTransfer, "school_name", NonEmptyString)
	e.RegisterValidator(domain.KindTransfer, "direction", OneOf("IN", "OUT"))
	e.RegisterValidator(domain.KindTransfer, "transferred_on", OptionalDate)
	e.RegisterValidator(domain.KindTransfer, "reason", OptionalString)

	e.RegisterValidator(domain.KindStudentDocument, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindStudentDocument, "title", NonEmptyString)
	e.RegisterValidator(domain.KindStudentDocument, "doc_type", OptionalString)
	e.RegisterValidator(domain.KindStudentDocument, "file_ref", OptionalString)
	e.RegisterValidator(domain.KindStudentDocument, "issued_on", OptionalDate)

	e.RegisterValidator(domain.KindAward, "student_id", UUIDRef)
	e.RegisterValidator(domain.KindAward, "session_id", OptionalUUIDRef)
	e.RegisterValidator(domain.KindAward, "title", NonEmptyString)
	e.RegisterValidator(domain.KindAward, "description", OptionalString)
	e.RegisterValidator(domain.KindAward, "awarded_on", OptionalDate)
}
