package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mscrnt/vdisplay/pkg/edid"
	"github.com/mscrnt/vdisplay/pkg/preset"
	"github.com/spf13/cobra"
)

var (
	vicFeasibleOnly bool
	vicJSON         bool
	vicTop          int
)

func vicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vic",
		Short: "Inspect CEA-861 video identification codes",
	}

	cmd.AddCommand(vicListCmd())
	cmd.AddCommand(vicMatchCmd())
	cmd.AddCommand(vicShowCmd())

	return cmd
}

func vicListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the known VIC timings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			var vics []edid.VIC
			for _, v := range edid.VICs() {
				if !vicFeasibleOnly || v.Feasible() {
					vics = append(vics, v)
				}
			}

			if vicJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(vics)
			}

			fmt.Fprintf(out, "%-5s %-22s %-10s %-8s\n", "VIC", "Mode", "Clock", "Fits")
			fmt.Fprintln(out, strings.Repeat("-", 48))
			for _, v := range vics {
				clock, _, _ := edid.ClockInfo(int(v.Width), int(v.Height), int(v.RefreshHz))
				fmt.Fprintf(out, "%-5d %-22s %-10s %-8s\n",
					v.Code, v.Name(), fmt.Sprintf("%.2f", clock), formatBool(v.Feasible(), "yes", "no"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&vicFeasibleOnly, "feasible", false, "Only list timings that fit the EDID pixel clock field")
	cmd.Flags().BoolVar(&vicJSON, "json", false, "Output as JSON")

	return cmd
}

func vicMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match WIDTHxHEIGHT@HZ",
		Short: "Rank the VIC timings closest to a mode",
		Long: `Rank the encodable VIC timings by closeness to a mode. This is the
substitution "connect" makes when the mode's pixel clock overflows.

Example:
  vdisplay vic match 2560x1440@144 --top 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, hz, err := preset.ParseMode(args[0])
			if err != nil {
				return err
			}

			matches := edid.RankMatches(w, h, hz, vicTop)
			if len(matches) == 0 {
				return fmt.Errorf("no VIC matches %s", args[0])
			}

			out := cmd.OutOrStdout()
			if vicJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}

			fmt.Fprintf(out, "%-5s %-5s %-22s %s\n", "Rank", "VIC", "Mode", "Score")
			fmt.Fprintln(out, strings.Repeat("-", 48))
			for i, m := range matches {
				fmt.Fprintf(out, "%-5d %-5d %-22s %.1f\n", i+1, m.VIC.Code, m.VIC.Name(), m.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&vicTop, "top", 5, "Number of matches to show (0 for all)")
	cmd.Flags().BoolVar(&vicJSON, "json", false, "Output as JSON")

	return cmd
}

func vicShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show the timing of a VIC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid VIC %q", args[0])
			}
			v, ok := edid.LookupVIC(uint16(code))
			if !ok {
				return fmt.Errorf("unknown VIC %d", code)
			}

			mhz, maxMHz, exceeds := edid.ClockInfo(int(v.Width), int(v.Height), int(v.RefreshHz))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "VIC %d: %s\n", v.Code, v.Name())
			fmt.Fprintf(out, "Pixel clock: %.2f MHz (max: %.2f MHz)\n", mhz, maxMHz)
			fmt.Fprintf(out, "Encodable: %s\n", formatBool(!exceeds, "yes", "no"))
			return nil
		},
	}
}
