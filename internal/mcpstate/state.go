package mcpstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const stateFileName = "mcp.state"

// State describes a running MCP server.
type State struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"startedAt"`
	Root      string    `json:"root"`
	TagFile   string    `json:"tagFile"`
}

// StatePath returns the path to the MCP state file
func StatePath(toolDir string) string {
	return filepath.Join(toolDir, stateFileName)
}

// CreateStateFile records that this process serves root with tagFile.
func CreateStateFile(toolDir, root, tagFile string) error {
	state := State{
		PID:       os.Getpid(),
		StartedAt: time.Now(),
		Root:      root,
		TagFile:   tagFile,
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	statePath := StatePath(toolDir)
	if err := os.WriteFile(statePath, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// RemoveStateFile removes the MCP state file
func RemoveStateFile(toolDir string) error {
	statePath := StatePath(toolDir)
	if err := os.Remove(statePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

// IsRunning reports whether the process named in the state file is alive.
// Stale or corrupted state files are removed.
func IsRunning(toolDir string) (bool, *State, error) {
	statePath := StatePath(toolDir)

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		_ = os.Remove(statePath)
		return false, nil, nil
	}

	// Check if the process is still running
	process, err := os.FindProcess(state.PID)
	if err != nil {
		_ = os.Remove(statePath)
		return false, nil, nil
	}

	// Signal 0 probes for liveness without delivering anything.
	err = process.Signal(syscall.Signal(0))
	if err != nil {
		_ = os.Remove(statePath)
		return false, nil, nil
	}

	return true, &state, nil
}
