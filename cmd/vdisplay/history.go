package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mscrnt/vdisplay/pkg/db"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historySessions bool
	historyOutput   string
	historyTable    string
	historySaveEDID string
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse generated EDIDs and display sessions",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyExportCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent EDIDs or sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			out := cmd.OutOrStdout()
			if historySessions {
				sessions, err := database.ListSessions(db.SessionFilter{Limit: historyLimit})
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions found")
					return nil
				}

				fmt.Fprintf(out, "%-6s %-20s %-20s %-20s %-10s\n", "ID", "Connector", "Connected", "Disconnected", "Previous")
				fmt.Fprintln(out, strings.Repeat("-", 80))
				for _, s := range sessions {
					disconnected := "active"
					if !s.Active() {
						disconnected = s.DisconnectedAt.Local().Format(timeFormat)
					}
					fmt.Fprintf(out, "%-6d %-20s %-20s %-20s %-10s\n",
						s.ID, s.Connector(), s.ConnectedAt.Local().Format(timeFormat), disconnected, formatPorts(s.Previous))
				}
				return nil
			}

			records, err := database.ListEDIDs(db.EDIDFilter{Limit: historyLimit})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No EDIDs found")
				return nil
			}

			fmt.Fprintf(out, "%-6s %-9s %-20s %-16s %-5s %-14s %-8s\n", "ID", "Source", "Created", "Mode", "HDR", "Name", "VIC")
			fmt.Fprintln(out, strings.Repeat("-", 84))
			for _, r := range records {
				vic := "-"
				if r.Fallback {
					vic = fmt.Sprintf("%d", r.VIC)
				}
				fmt.Fprintf(out, "%-6d %-9s %-20s %-16s %-5s %-14s %-8s\n",
					r.ID, r.Source, r.CreatedAt.Local().Format(timeFormat), r.Mode(),
					formatBool(r.HDR, "yes", "no"), r.Name, vic)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&historySessions, "sessions", false, "List display sessions instead of EDIDs")

	return cmd
}

func historyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show an EDID or session by ID or UID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			out := cmd.OutOrStdout()
			if historySessions {
				s, err := database.GetSession(args[0])
				if err != nil {
					return err
				}
				printSession(out, s)
				return nil
			}

			r, err := database.GetEDID(args[0])
			if errors.Is(err, db.ErrNotFound) {
				// Session UIDs are accepted without --sessions
				if s, serr := database.GetSession(args[0]); serr == nil {
					printSession(out, s)
					return nil
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "EDID #%d (%s)\n", r.ID, r.UID)
			fmt.Fprintf(out, "Source: %s\n", r.Source)
			fmt.Fprintf(out, "Created: %s\n", r.CreatedAt.Local().Format(timeFormat))
			fmt.Fprintf(out, "Mode: %s\n", r.Mode())
			fmt.Fprintf(out, "Requested: %s\n", r.Requested)
			if r.Fallback {
				fmt.Fprintf(out, "VIC fallback: %d\n", r.VIC)
			}
			fmt.Fprintf(out, "HDR: %s\n", formatBool(r.HDR, "Enabled", "Disabled"))
			fmt.Fprintf(out, "Name: %s\n", r.Name)
			fmt.Fprintf(out, "Pixel clock: %.2f MHz\n", r.ClockMHz)
			fmt.Fprintf(out, "Path: %s\n", r.Path)
			fmt.Fprintln(out, "\nData:")
			for off := 0; off < len(r.Data); off += 16 {
				end := min(off+16, len(r.Data))
				fmt.Fprintf(out, "  %04X  %s\n", off, hexBytes(r.Data[off:end]))
			}

			if historySaveEDID != "" {
				if err := os.WriteFile(historySaveEDID, r.Data, 0o644); err != nil {
					return fmt.Errorf("failed to write EDID: %w", err)
				}
				fmt.Fprintf(out, "\nSaved EDID to %s\n", historySaveEDID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&historySessions, "sessions", false, "Look up a session instead of an EDID")
	cmd.Flags().StringVar(&historySaveEDID, "save", "", "Write the stored EDID bytes to a file")

	return cmd
}

func printSession(out io.Writer, s *db.Session) {
	fmt.Fprintf(out, "Session #%d (%s)\n", s.ID, s.UID)
	fmt.Fprintf(out, "Connector: %s on %s\n", s.Connector(), s.Device)
	fmt.Fprintf(out, "Connected: %s\n", s.ConnectedAt.Local().Format(timeFormat))
	if s.Active() {
		fmt.Fprintln(out, "Disconnected: still active")
	} else {
		fmt.Fprintf(out, "Disconnected: %s (%s)\n", s.DisconnectedAt.Local().Format(timeFormat), s.Duration().Round(time.Second))
	}
	fmt.Fprintf(out, "Previous displays: %s\n", formatPorts(s.Previous))
	if s.EDIDUID != "" {
		fmt.Fprintf(out, "EDID: %s\n", s.EDIDUID)
	}
	for _, key := range []string{"hostname", "platform", "platformVersion", "kernel", "arch"} {
		if v, ok := s.Host[key]; ok {
			fmt.Fprintf(out, "Host %s: %v\n", key, v)
		}
	}
}

func historyExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history",
	}

	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Export EDIDs or sessions to CSV",
		Long: `Export the history to CSV, one table at a time.

Examples:
  vdisplay history export csv --out edids.csv
  vdisplay history export csv --table sessions`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHistoryExport(db.ExportFormatCSV)
		},
	}
	csvCmd.Flags().StringVar(&historyTable, "table", "edids", "Table to export: edids or sessions")
	csvCmd.Flags().StringVarP(&historyOutput, "out", "o", "", "Output file (default: stdout)")

	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Export EDIDs and sessions to JSON",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runHistoryExport(db.ExportFormatJSON)
		},
	}
	jsonCmd.Flags().StringVarP(&historyOutput, "out", "o", "", "Output file (default: stdout)")

	cmd.AddCommand(csvCmd)
	cmd.AddCommand(jsonCmd)

	return cmd
}

func runHistoryExport(format db.ExportFormat) error {
	database, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	out, closeOut, err := createOutput(historyOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	switch {
	case format == db.ExportFormatJSON:
		err = database.ExportJSON(out)
	case historyTable == "edids":
		err = database.ExportEDIDsCSV(out, db.EDIDFilter{})
	case historyTable == "sessions":
		err = database.ExportSessionsCSV(out, db.SessionFilter{})
	default:
		return fmt.Errorf("unknown table %q (use edids or sessions)", historyTable)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", format, err)
	}

	if historyOutput != "" && historyOutput != "-" {
		fmt.Printf("Exported history to %s\n", historyOutput)
	}
	return nil
}
