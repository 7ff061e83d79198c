package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific key types
type (
	// AnalysisID identifies one complete statistical analysis run.
	AnalysisID ID
	// FactorKey names a categorical factor (independent variable).
	FactorKey string
	// ResponseKey names a numeric response variable (measured outcome).
	ResponseKey string
	// ModelID identifies the model/unit that produced a trial.
	ModelID string
)

func (id AnalysisID) String() string { return ID(id).String() }
func (k FactorKey) String() string   { return string(k) }
func (k ResponseKey) String() string { return string(k) }
func (m ModelID) String() string     { return string(m) }

// ParseAnalysisID parses a string into AnalysisID
func ParseAnalysisID(s string) (AnalysisID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("analysis ID cannot be empty")
	}
	return AnalysisID(s), nil
}

// ParseFactorKey parses a string into FactorKey
func ParseFactorKey(s string) (FactorKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("factor key cannot be empty")
	}
	return FactorKey(s), nil
}

// ParseResponseKey parses a string into ResponseKey
func ParseResponseKey(s string) (ResponseKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("response key cannot be empty")
	}
	return ResponseKey(s), nil
}
