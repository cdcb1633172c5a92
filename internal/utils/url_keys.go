package utils

const (
	// StudentIdKey is the key for student ID used in routing parameters.
	StudentIdKey = "studentId"

	// CourseIdKey is the key for course ID used in routing parameters.
	CourseIdKey = "courseId"

	// SeanceIdKey is the key for seance ID used in routing parameters.
	SeanceIdKey = "seanceId"

	// FiliereIdKey is the key for filiere ID used in routing parameters.
	FiliereIdKey = "filiereId"

	// RequestIdKey is the key for enrollment request ID used in routing parameters.
	RequestIdKey = "requestId"

	// SearchParamKey is the key for a generic search query used in query parameters.
	SearchParamKey = "q"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
