package manager

import "fmt"

// Status is the lifecycle state of the tag index for one workspace root.
type Status int

const (
	StatusEmpty Status = iota
	StatusGenerating
	StatusGeneratedOnDisk
	StatusLoading
	StatusLoaded
)

// String returns the human-readable name of the status.
func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusGenerating:
		return "generating"
	case StatusGeneratedOnDisk:
		return "generated"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Name returns the state name as shown to MCP clients.
func (s Status) Name() string {
	switch s {
	case StatusEmpty:
		return "Empty"
	case StatusGenerating:
		return "Generating"
	case StatusGeneratedOnDisk:
		return "GeneratedOnDisk"
	case StatusLoading:
		return "Loading"
	case StatusLoaded:
		return "Loaded"
	}
	return s.String()
}

// Busy reports whether a generation or load is in flight.
func (s Status) Busy() bool {
	switch s {
	case StatusGenerating, StatusGeneratedOnDisk, StatusLoading:
		return true
	case StatusEmpty, StatusLoaded:
		return false
	}
	return false
}

// Searchable reports whether the store may be queried.
func (s Status) Searchable() bool {
	switch s {
	case StatusLoaded:
		return true
	case StatusEmpty, StatusGenerating, StatusGeneratedOnDisk, StatusLoading:
		return false
	}
	return false
}
