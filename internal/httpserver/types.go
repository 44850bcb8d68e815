package httpserver

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Profiles int    `json:"profiles"`
}

// PatchProfileRequest is the body of PATCH /api/slicing/<slicer>/profiles/<key>
type PatchProfileRequest struct {
	Default     *bool   `json:"default,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UtilTestRequest is the body of POST /api/util/test
type UtilTestRequest struct {
	Command     string `json:"command"`
	Path        string `json:"path"`
	CheckType   string `json:"check_type,omitempty"`   // "file" or "dir"
	CheckAccess string `json:"check_access,omitempty"` // any of "r", "w", "x"
}

// UtilTestResponse answers a path test
type UtilTestResponse struct {
	Result bool `json:"result"`
	Exists bool `json:"exists"`
	TypeOK bool `json:"typeok"`
	Access bool `json:"access"`
}
