package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EDIDRecord is one generated EDID
type EDIDRecord struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	Source    string    `json:"source"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	RefreshHz int       `json:"refresh_hz"`
	HDR       bool      `json:"hdr"`
	Name      string    `json:"name"`
	Requested string    `json:"requested"`
	VIC       int       `json:"vic,omitempty"`
	Fallback  bool      `json:"fallback"`
	ClockMHz  float64   `json:"clock_mhz"`
	Path      string    `json:"path"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Mode returns the encoded mode as WxH@Hz
func (r *EDIDRecord) Mode() string {
	return fmt.Sprintf("%dx%d@%d", r.Width, r.Height, r.RefreshHz)
}

// Record sources
const (
	SourceGenerate = "generate"
	SourceConnect  = "connect"
)

// Session is one connect/disconnect cycle of a virtual display
type Session struct {
	ID             int64      `json:"id"`
	UID            string     `json:"uid"`
	EDIDUID        string     `json:"edid_uid"`
	Device         string     `json:"device"`
	Card           string     `json:"card"`
	Port           string     `json:"port"`
	Previous       []string   `json:"previous"`
	Host           JSONData   `json:"host"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at"`
}

// Connector returns the sysfs connector name, e.g. card1-DP-2
func (s *Session) Connector() string {
	return s.Card + "-" + s.Port
}

// Active reports whether the session has not been disconnected
func (s *Session) Active() bool {
	return s.DisconnectedAt == nil
}

// Duration returns how long the display was connected
func (s *Session) Duration() time.Duration {
	if s.DisconnectedAt == nil {
		return 0
	}
	return s.DisconnectedAt.Sub(s.ConnectedAt)
}

func joinPorts(ports []string) string {
	return strings.Join(ports, ",")
}

func splitPorts(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// JSONData is a custom type for storing JSON in SQLite
type JSONData map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONData) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONData) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan type %T into JSONData", value)
	}

	return json.Unmarshal(data, j)
}

// EDIDFilter represents filters for querying generated EDIDs
type EDIDFilter struct {
	Source string
	HDR    *bool
	Since  *time.Time
	Limit  int
	Offset int
}

// SessionFilter represents filters for querying sessions
type SessionFilter struct {
	Card       string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ExportFormat represents the format for exporting data
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)
