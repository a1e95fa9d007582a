package models

// RenameRequest is the body of POST /plan and POST /rename.
// Empty fields fall back to the configured defaults.
type RenameRequest struct {
	Folder    string `json:"folder"`
	Extension string `json:"extension"`
	Prefix    string `json:"prefix"`
	Order     string `json:"order"`
}

// RenameOp is one planned or applied rename
type RenameOp struct {
	Index   int    `json:"index"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// Conflict describes a rename whose target is already occupied
type Conflict struct {
	Index   int    `json:"index"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Reason  string `json:"reason"`
}

// PlanResponse is the result of a dry run
type PlanResponse struct {
	Folder     string     `json:"folder"`
	Operations []RenameOp `json:"operations"`
	Conflicts  []Conflict `json:"conflicts"`
}

// RenameResponse lists the renames applied. On failure Error is set and
// Renamed holds whatever was applied before it.
type RenameResponse struct {
	Folder    string     `json:"folder"`
	Renamed   []RenameOp `json:"renamed"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorType string     `json:"error_type,omitempty"`
}
