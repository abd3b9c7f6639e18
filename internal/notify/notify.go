// Package notify implements the user notification sinks.
package notify

import (
	"fmt"
	"io"
	"log"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Terminal writes styled messages to W, typically stderr. Messages are also
// copied to the standard logger.
type Terminal struct {
	W io.Writer
}

func (t Terminal) Info(msg string) {
	log.Printf("info: %s", msg)
	_, _ = fmt.Fprintf(t.W, "%s %s\n", infoStyle.Render("→"), msg)
}

func (t Terminal) Error(msg string) {
	log.Printf("error: %s", msg)
	_, _ = fmt.Fprintf(t.W, "%s %s\n", errorStyle.Render("✗"), msg)
}

// Log only writes to the standard logger. The MCP server uses it since
// stdout carries the protocol.
type Log struct{}

func (Log) Info(msg string)  { log.Printf("info: %s", msg) }
func (Log) Error(msg string) { log.Printf("error: %s", msg) }
