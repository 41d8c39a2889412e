package catalog

import "github.com/ayodelan/schoolbase-backend/internal/domain"

// Constraint identifiers below must stay in sync with the goose migrations
// in internal/adapter/postgres/migrations. The translator matches them as
// case-insensitive substrings of the database constraint name.

// CommonForeignKeys is the bucket of audit foreign keys shared by every
// kind, so per-kind maps never re-declare them. The leading underscore
// keeps them from matching unrelated attribute columns.
func CommonForeignKeys() map[string]FKConstraint {
	return map[string]FKConstraint{
		"_created_by":       {References: domain.KindStaff, Attribute: "created_by", Label: "staff member"},
		"_last_modified_by": {References: domain.KindStaff, Attribute: "last_modified_by", Label: "staff member"},
		"_archived_by":      {References: domain.KindStaff, Attribute: "archived_by", Label: "staff member"},
	}
}

// Default builds the school catalog. Each descriptor is one managed kind;
// the lifecycle engine and the store read everything they need from here.
func Default() *Catalog {
	return New(CommonForeignKeys(),
		&Descriptor{
			Kind:        domain.KindAcademicSession,
			StorageName: "academic_sessions",
			Label:       "academic session",
			Attributes:  []string{"name", "starts_on", "ends_on"},
			Unique: map[string]UniqueConstraint{
				"uq_academic_sessions_name": {Attribute: "name", Extract: AttrExtractor("name")},
			},
			Dependencies: []DependencyEdge{
				{Relation: "terms", Dependent: domain.KindAcademicTerm, FKAttr: "session_id", Label: "terms"},
				{Relation: "repetitions", Dependent: domain.KindRepetition, FKAttr: "session_id", Label: "repetitions"},
				{Relation: "promotions", Dependent: domain.KindPromotion, FKAttr: "session_id", Label: "promotions"},
				{Relation: "graduations", Dependent: domain.KindGraduation, FKAttr: "session_id", Label: "graduations"},
				{Relation: "awards", Dependent: domain.KindAward, FKAttr: "session_id", Label: "awards"},
			},
			Relations: []Relation{
				{Name: "terms", Kind: domain.KindAcademicTerm, Mode: RelationMany, Attribute: "session_id",
					Projection: []ProjectedField{{From: "name", As: "term"}, {From: "starts_on", As: "starts_on"}, {From: "ends_on", As: "ends_on"}}},
			},
			Searchable:  []string{"name"},
			DefaultSort: SortKey{Attribute: "name", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindAcademicTerm,
			StorageName: "academic_terms",
			Label:       "academic term",
			Attributes:  []string{"session_id", "name", "starts_on", "ends_on"},
			Unique: map[string]UniqueConstraint{
				"uq_academic_terms_session_name": {Attribute: "name", Extract: AttrExtractor("name")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_academic_terms_session_id": {References: domain.KindAcademicSession, Attribute: "session_id", Label: "academic session"},
			},
			Dependencies: []DependencyEdge{
				{Relation: "enrollments", Dependent: domain.KindSubjectEnrollment, FKAttr: "term_id", Label: "subject enrollments"},
				{Relation: "grades", Dependent: domain.KindGrade, FKAttr: "term_id", Label: "grades"},
				{Relation: "grade_totals", Dependent: domain.KindGradeTotal, FKAttr: "term_id", Label: "grade totals"},
			},
			Relations: []Relation{
				{Name: "session", Kind: domain.KindAcademicSession, Mode: RelationOne, Attribute: "session_id",
					Projection: []ProjectedField{{From: "name", As: "session"}}},
			},
			Searchable:  []string{"name"},
			DefaultSort: SortKey{Attribute: "starts_on", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindAcademicLevel,
			StorageName: "academic_levels",
			Label:       "academic level",
			Attributes:  []string{"name", "description", "rank"},
			Unique: map[string]UniqueConstraint{
				"uq_academic_levels_name": {Attribute: "name", Extract: AttrExtractor("name")},
				"uq_academic_levels_rank": {Attribute: "rank", Extract: AttrExtractor("rank")},
			},
			Dependencies: []DependencyEdge{
				{Relation: "classes", Dependent: domain.KindSchoolClass, FKAttr: "level_id", Label: "classes"},
				{Relation: "students", Dependent: domain.KindStudent, FKAttr: "level_id", Label: "students"},
				{Relation: "repetitions", Dependent: domain.KindRepetition, FKAttr: "level_id", Label: "repetitions"},
				{Relation: "promotions_from", Dependent: domain.KindPromotion, FKAttr: "from_level_id", Label: "promotions"},
				{Relation: "promotions_to", Dependent: domain.KindPromotion, FKAttr: "to_level_id", Label: "promotions"},
			},
			Relations: []Relation{
				{Name: "classes", Kind: domain.KindSchoolClass, Mode: RelationMany, Attribute: "level_id",
					Projection: []ProjectedField{{From: "name", As: "class"}}},
			},
			Searchable:  []string{"name", "description"},
			DefaultSort: SortKey{Attribute: "rank", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindDepartment,
			StorageName: "departments",
			Label:       "department",
			Attributes:  []string{"name", "description"},
			Unique: map[string]UniqueConstraint{
				"uq_departments_name": {Attribute: "name", Extract: AttrExtractor("name")},
			},
			Dependencies: []DependencyEdge{
				{Relation: "classes", Dependent: domain.KindSchoolClass, FKAttr: "department_id", Label: "classes"},
				{Relation: "subjects", Dependent: domain.KindSubject, FKAttr: "department_id", Label: "subjects"},
				{Relation: "students", Dependent: domain.KindStudent, FKAttr: "department_id", Label: "students"},
				{Relation: "staff", Dependent: domain.KindStaff, FKAttr: "department_id", Label: "staff members"},
			},
			Relations: []Relation{
				{Name: "subjects", Kind: domain.KindSubject, Mode: RelationMany, Attribute: "department_id",
					Projection: []ProjectedField{{From: "name", As: "subject"}, {From: "code", As: "code"}}},
			},
			Searchable:  []string{"name", "description"},
			DefaultSort: SortKey{Attribute: "name", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindSchoolClass,
			StorageName: "school_classes",
			Label:       "class",
			Attributes:  []string{"name", "level_id", "department_id", "teacher_id"},
			Unique: map[string]UniqueConstraint{
				"uq_school_classes_level_name": {Attribute: "name", Extract: AttrExtractor("name")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_school_classes_level_id":      {References: domain.KindAcademicLevel, Attribute: "level_id", Label: "academic level"},
				"fk_school_classes_department_id": {References: domain.KindDepartment, Attribute: "department_id", Label: "department"},
				"fk_school_classes_teacher_id":    {References: domain.KindStaff, Attribute: "teacher_id", Label: "form teacher"},
			},
			Dependencies: []DependencyEdge{
				{Relation: "students", Dependent: domain.KindStudent, FKAttr: "class_id", Label: "students"},
				{Relation: "teacher_assignments", Dependent: domain.KindTeacherAssignment, FKAttr: "class_id", Label: "teacher assignments"},
			},
			Relations: []Relation{
				{Name: "level", Kind: domain.KindAcademicLevel, Mode: RelationOne, Attribute: "level_id",
					Projection: []ProjectedField{{From: "name", As: "level"}}},
				{Name: "form_teacher", Kind: domain.KindStaff, Mode: RelationOne, Attribute: "teacher_id",
					Projection: []ProjectedField{{From: "first_name", As: "first_name"}, {From: "last_name", As: "last_name"}}},
				{Name: "students", Kind: domain.KindStudent, Mode: RelationMany, Attribute: "class_id",
					Projection: []ProjectedField{{From: "admission_no", As: "admission_no"}, {From: "first_name", As: "first_name"}, {From: "last_name", As: "last_name"}}},
			},
			Searchable:  []string{"name"},
			DefaultSort: SortKey{Attribute: "name", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindSubject,
			StorageName: "subjects",
			Label:       "subject",
			Attributes:  []string{"name", "code", "department_id"},
			Unique: map[string]UniqueConstraint{
				"uq_subjects_name": {Attribute: "name", Extract: AttrExtractor("name")},
				"uq_subjects_code": {Attribute: "code", Extract: AttrExtractor("code")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_subjects_department_id": {References: domain.KindDepartment, Attribute: "department_id", Label: "department"},
			},
			Dependencies: []DependencyEdge{
				{Relation: "enrollments", Dependent: domain.KindSubjectEnrollment, FKAttr: "subject_id", Label: "subject enrollments"},
				{Relation: "teacher_assignments", Dependent: domain.KindTeacherAssignment, FKAttr: "subject_id", Label: "teacher assignments"},
				{Relation: "grades", Dependent: domain.KindGrade, FKAttr: "subject_id", Label: "grades"},
			},
			Relations: []Relation{
				{Name: "department", Kind: domain.KindDepartment, Mode: RelationOne, Attribute: "department_id",
					Projection: []ProjectedField{{From: "name", As: "department"}}},
			},
			Searchable:  []string{"name", "code"},
			DefaultSort: SortKey{Attribute: "name", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindStudent,
			StorageName: "students",
			Label:       "student",
			Attributes: []string{
				"first_name", "last_name", "gender", "date_of_birth",
				"admission_no", "admission_date",
				"level_id", "class_id", "department_id", "guardian_id",
			},
			Unique: map[string]UniqueConstraint{
				"uq_students_admission_no": {Attribute: "admission_no", Extract: AttrExtractor("admission_no")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_students_level_id":      {References: domain.KindAcademicLevel, Attribute: "level_id", Label: "academic level"},
				"fk_students_class_id":      {References: domain.KindSchoolClass, Attribute: "class_id", Label: "class"},
				"fk_students_department_id": {References: domain.KindDepartment, Attribute: "department_id", Label: "department"},
				"fk_students_guardian_id":   {References: domain.KindGuardian, Attribute: "guardian_id", Label: "guardian"},
			},
			Dependencies: []DependencyEdge{
				{Relation: "enrollments", Dependent: domain.KindSubjectEnrollment, FKAttr: "student_id", Label: "subject enrollments"},
				{Relation: "grades", Dependent: domain.KindGrade, FKAttr: "student_id", Label: "grades"},
				{Relation: "grade_totals", Dependent: domain.KindGradeTotal, FKAttr: "student_id", Label: "grade totals"},
				{Relation: "repetitions", Dependent: domain.KindRepetition, FKAttr: "student_id", Label: "repetitions"},
				{Relation: "promotions", Dependent: domain.KindPromotion, FKAttr: "student_id", Label: "promotions"},
				{Relation: "graduations", Dependent: domain.KindGraduation, FKAttr: "student_id", Label: "graduations"},
				{Relation: "transfers", Dependent: domain.KindTransfer, FKAttr: "student_id", Label: "transfers"},
				{Relation: "documents", Dependent: domain.KindStudentDocument, FKAttr: "student_id", Label: "documents"},
				{Relation: "awards", Dependent: domain.KindAward, FKAttr: "student_id", Label: "awards"},
			},
			Relations: []Relation{
				{Name: "level", Kind: domain.KindAcademicLevel, Mode: RelationOne, Attribute: "level_id",
					Projection: []ProjectedField{{From: "name", As: "level"}}},
				{Name: "class", Kind: domain.KindSchoolClass, Mode: RelationOne, Attribute: "class_id",
					Projection: []ProjectedField{{From: "name", As: "class"}}},
				{Name: "department", Kind: domain.KindDepartment, Mode: RelationOne, Attribute: "department_id",
					Projection: []ProjectedField{{From: "name", As: "department"}}},
				{Name: "guardian", Kind: domain.KindGuardian, Mode: RelationOne, Attribute: "guardian_id",
					Projection: []ProjectedField{{From: "first_name", As: "first_name"}, {From: "last_name", As: "last_name"}, {From: "phone", As: "phone"}}},
				{Name: "grades", Kind: domain.KindGrade, Mode: RelationMany, Attribute: "student_id",
					Projection: []ProjectedField{{From: "subject_id", As: "subject_id"}, {From: "ca_score", As: "ca_score"}, {From: "exam_score", As: "exam_score"}, {From: "total_score", As: "total_score"}, {From: "grade_letter", As: "grade"}}},
				{Name: "awards", Kind: domain.KindAward, Mode: RelationMany, Attribute: "student_id",
					Projection: []ProjectedField{{From: "title", As: "title"}, {From: "awarded_on", As: "awarded_on"}}},
				{Name: "documents", Kind: domain.KindStudentDocument, Mode: RelationMany, Attribute: "student_id",
					Projection: []ProjectedField{{From: "title", As: "title"}, {From: "doc_type", As: "type"}}},
			},
			Searchable:     []string{"first_name", "last_name", "admission_no"},
			FullNameFields: []string{"first_name", "last_name"},
			DefaultSort:    SortKey{Attribute: "last_name", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindGuardian,
			StorageName: "guardians",
			Label:       "guardian",
			Attributes:  []string{"first_name", "last_name", "phone", "email", "address", "occupation"},
			Unique: map[string]UniqueConstraint{
				"uq_guardians_phone": {Attribute: "phone", Extract: AttrExtractor("phone")},
			},
			Dependencies: []DependencyEdge{
				{Relation: "wards", Dependent: domain.KindStudent, FKAttr: "guardian_id", Label: "wards"},
			},
			Relations: []Relation{
				{Name: "wards", Kind: domain.KindStudent, Mode: RelationMany, Attribute: "guardian_id",
					Projection: []ProjectedField{{From: "admission_no", As: "admission_no"}, {From: "first_name", As: "first_name"}, {From: "last_name", As: "last_name"}}},
			},
			Searchable:     []string{"first_name", "last_name", "phone", "email"},
			FullNameFields: []string{"first_name", "last_name"},
			DefaultSort:    SortKey{Attribute: "last_name", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindStaff,
			StorageName: "staff_members",
			Label:       "staff member",
			Attributes: []string{
				"first_name", "last_name", "email", "phone",
				"staff_no", "staff_type", "department_id",
			},
			Unique: map[string]UniqueConstraint{
				"uq_staff_members_email":    {Attribute: "email", Extract: AttrExtractor("email")},
				"uq_staff_members_staff_no": {Attribute: "staff_no", Extract: AttrExtractor("staff_no")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_staff_members_department_id": {References: domain.KindDepartment, Attribute: "department_id", Label: "department"},
			},
			Dependencies: []DependencyEdge{
				{Relation: "managed_classes", Dependent: domain.KindSchoolClass, FKAttr: "teacher_id", Label: "managed classes"},
				{Relation: "teacher_assignments", Dependent: domain.KindTeacherAssignment, FKAttr: "staff_id", Label: "teacher assignments"},
			},
			Relations: []Relation{
				{Name: "department", Kind: domain.KindDepartment, Mode: RelationOne, Attribute: "department_id",
					Projection: []ProjectedField{{From: "name", As: "department"}}},
				{Name: "managed_classes", Kind: domain.KindSchoolClass, Mode: RelationMany, Attribute: "teacher_id",
					Projection: []ProjectedField{{From: "name", As: "class"}}},
			},
			Searchable:     []string{"first_name", "last_name", "email", "staff_no"},
			FullNameFields: []string{"first_name", "last_name"},
			DefaultSort:    SortKey{Attribute: "last_name", Direction: domain.SortAsc},
		},

		&Descriptor{
			Kind:        domain.KindSubjectEnrollment,
			StorageName: "subject_enrollments",
			Label:       "subject enrollment",
			Attributes:  []string{"student_id", "subject_id", "term_id", "status"},
			Unique: map[string]UniqueConstraint{
				"uq_subject_enrollments_triplet": {Attribute: "subject_id", Extract: AttrExtractor("subject_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_subject_enrollments_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_subject_enrollments_subject_id": {References: domain.KindSubject, Attribute: "subject_id", Label: "subject"},
				"fk_subject_enrollments_term_id":    {References: domain.KindAcademicTerm, Attribute: "term_id", Label: "academic term"},
			},
			Searchable:  []string{"status"},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindTeacherAssignment,
			StorageName: "teacher_assignments",
			Label:       "teacher assignment",
			Attributes:  []string{"staff_id", "subject_id", "class_id"},
			Unique: map[string]UniqueConstraint{
				"uq_teacher_assignments_triplet": {Attribute: "subject_id", Extract: AttrExtractor("subject_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_teacher_assignments_staff_id":   {References: domain.KindStaff, Attribute: "staff_id", Label: "staff member"},
				"fk_teacher_assignments_subject_id": {References: domain.KindSubject, Attribute: "subject_id", Label: "subject"},
				"fk_teacher_assignments_class_id":   {References: domain.KindSchoolClass, Attribute: "class_id", Label: "class"},
			},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindGrade,
			StorageName: "grades",
			Label:       "grade",
			Attributes: []string{
				"student_id", "subject_id", "term_id",
				"ca_score", "exam_score", "total_score", "grade_letter", "remark",
			},
			Unique: map[string]UniqueConstraint{
				"uq_grades_triplet": {Attribute: "subject_id", Extract: AttrExtractor("subject_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_grades_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_grades_subject_id": {References: domain.KindSubject, Attribute: "subject_id", Label: "subject"},
				"fk_grades_term_id":    {References: domain.KindAcademicTerm, Attribute: "term_id", Label: "academic term"},
			},
			Searchable:  []string{"grade_letter"},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindGradeTotal,
			StorageName: "grade_totals",
			Label:       "grade total",
			Attributes:  []string{"student_id", "term_id", "total_score", "average_score", "subjects_count", "position"},
			Unique: map[string]UniqueConstraint{
				"uq_grade_totals_student_term": {Attribute: "term_id", Extract: AttrExtractor("term_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_grade_totals_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_grade_totals_term_id":    {References: domain.KindAcademicTerm, Attribute: "term_id", Label: "academic term"},
			},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindRepetition,
			StorageName: "repetitions",
			Label:       "repetition",
			Attributes:  []string{"student_id", "level_id", "session_id", "reason"},
			Unique: map[string]UniqueConstraint{
				"uq_repetitions_student_session": {Attribute: "session_id", Extract: AttrExtractor("session_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_repetitions_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_repetitions_level_id":   {References: domain.KindAcademicLevel, Attribute: "level_id", Label: "academic level"},
				"fk_repetitions_session_id": {References: domain.KindAcademicSession, Attribute: "session_id", Label: "academic session"},
			},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindPromotion,
			StorageName: "promotions",
			Label:       "promotion",
			Attributes:  []string{"student_id", "from_level_id", "to_level_id", "session_id"},
			Unique: map[string]UniqueConstraint{
				"uq_promotions_student_session": {Attribute: "session_id", Extract: AttrExtractor("session_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_promotions_student_id":    {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_promotions_from_level_id": {References: domain.KindAcademicLevel, Attribute: "from_level_id", Label: "academic level"},
				"fk_promotions_to_level_id":   {References: domain.KindAcademicLevel, Attribute: "to_level_id", Label: "academic level"},
				"fk_promotions_session_id":    {References: domain.KindAcademicSession, Attribute: "session_id", Label: "academic session"},
			},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindGraduation,
			StorageName: "graduations",
			Label:       "graduation",
			Attributes:  []string{"student_id", "session_id", "graduated_on"},
			Unique: map[string]UniqueConstraint{
				"uq_graduations_student": {Attribute: "student_id", Extract: AttrExtractor("student_id")},
			},
			ForeignKeys: map[string]FKConstraint{
				"fk_graduations_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_graduations_session_id": {References: domain.KindAcademicSession, Attribute: "session_id", Label: "academic session"},
			},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindTransfer,
			StorageName: "transfers",
			Label:       "transfer",
			Attributes:  []string{"student_id", "school_name", "direction", "transferred_on", "reason"},
			ForeignKeys: map[string]FKConstraint{
				"fk_transfers_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
			},
			Searchable:  []string{"school_name"},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindStudentDocument,
			StorageName: "student_documents",
			Label:       "document",
			Attributes:  []string{"student_id", "title", "doc_type", "file_ref", "issued_on"},
			ForeignKeys: map[string]FKConstraint{
				"fk_student_documents_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
			},
			Searchable:  []string{"title"},
			DefaultSort: SortKey{Attribute: "created_at", Direction: domain.SortDesc},
		},

		&Descriptor{
			Kind:        domain.KindAward,
			StorageName: "awards",
			Label:       "award",
			Attributes:  []string{"student_id", "session_id", "title", "description", "awarded_on"},
			ForeignKeys: map[string]FKConstraint{
				"fk_awards_student_id": {References: domain.KindStudent, Attribute: "student_id", Label: "student"},
				"fk_awards_session_id": {References: domain.KindAcademicSession, Attribute: "session_id", Label: "academic session"},
			},
			Searchable:  []string{"title"},
			DefaultSort: SortKey{Attribute: "awarded_on", Direction: domain.SortDesc},
		},
	)
}
