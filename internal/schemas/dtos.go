package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the version response
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// LoginResponseDTO is a struct that represents a successful login
// Token is the JWT carrying the subject, role and session id
type LoginResponseDTO struct {
	Token     string `json:"token"`
	LoginCode string `json:"loginCode"`
	Role      string `json:"role"`
}

// TableDTO is the tabular payload every dashboard listing returns
// Columns preserve the select order, Rows are row-oriented
type TableDTO struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// OperationResultDTO is a struct that represents the outcome of a write
// Message is the human-readable confirmation or the store's rejection reason
type OperationResultDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreatedAccountDTO is a struct that represents a freshly created account
// LoginCode must be communicated to the new user, it cannot be recovered later
type CreatedAccountDTO struct {
	Message   string `json:"message"`
	LoginCode string `json:"loginCode"`
}

// StudentRecordDTO is a struct that represents the detailed academic
// record of one student on the admin dashboard
type StudentRecordDTO struct {
	Courses        TableDTO `json:"courses"`
	Absences       TableDTO `json:"absences"`
	BlockedCourses TableDTO `json:"blockedCourses"`
}

// CourseDetailDTO is a struct that represents the full profile of a course
type CourseDetailDTO struct {
	Course        TableDTO `json:"course"`
	Prerequisites TableDTO `json:"prerequisites"`
	Enrolled      TableDTO `json:"enrolled"`
	Departement   TableDTO `json:"departement"`
}

// PaginatedResponse wraps a subset of records together with the
// pagination window that produced it
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination describes the window applied to a listing
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}
