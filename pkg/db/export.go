package db

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05"

// ExportEDIDsCSV writes generated EDIDs as CSV, one row per record
func (db *DB) ExportEDIDsCSV(w io.Writer, filter EDIDFilter) error {
	records, err := db.ListEDIDs(filter)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(w)

	headers := []string{
		"ID", "UID", "Source", "Created", "Mode", "HDR", "Name",
		"Requested", "VIC", "Fallback", "Pixel Clock (MHz)", "Path", "EDID",
	}
	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, rec := range records {
		vic := ""
		if rec.VIC > 0 {
			vic = strconv.Itoa(rec.VIC)
		}
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.UID,
			rec.Source,
			rec.CreatedAt.Format(timeLayout),
			rec.Mode(),
			strconv.FormatBool(rec.HDR),
			rec.Name,
			rec.Requested,
			vic,
			strconv.FormatBool(rec.Fallback),
			fmt.Sprintf("%.2f", rec.ClockMHz),
			rec.Path,
			strings.ToUpper(hex.EncodeToString(rec.Data)),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportSessionsCSV writes display sessions as CSV, one row per session
func (db *DB) ExportSessionsCSV(w io.Writer, filter SessionFilter) error {
	sessions, err := db.ListSessions(filter)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(w)

	headers := []string{
		"ID", "UID", "EDID UID", "Device", "Connector", "Previous",
		"Connected", "Disconnected", "Duration (s)",
	}
	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, sess := range sessions {
		row := []string{
			strconv.FormatInt(sess.ID, 10),
			sess.UID,
			sess.EDIDUID,
			sess.Device,
			sess.Connector(),
			strings.Join(sess.Previous, " "),
			sess.ConnectedAt.Format(timeLayout),
			"",
			fmt.Sprintf("%.3f", sess.Duration().Seconds()),
		}

		if sess.DisconnectedAt != nil {
			row[7] = sess.DisconnectedAt.Format(timeLayout)
		}

		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// History is the JSON export document
type History struct {
	EDIDs    []*EDIDRecord `json:"edids"`
	Sessions []*Session    `json:"sessions"`
}

// ExportJSON writes the whole history as one indented JSON document
func (db *DB) ExportJSON(w io.Writer) error {
	edids, err := db.ListEDIDs(EDIDFilter{})
	if err != nil {
		return err
	}

	sessions, err := db.ListSessions(SessionFilter{})
	if err != nil {
		return err
	}

	export := History{
		EDIDs:    edids,
		Sessions: sessions,
	}
	if export.EDIDs == nil {
		export.EDIDs = []*EDIDRecord{}
	}
	if export.Sessions == nil {
		export.Sessions = []*Session{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
