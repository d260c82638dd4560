package main

import (
	"fmt"

	"github.com/mscrnt/vdisplay/pkg/edid"
	"github.com/mscrnt/vdisplay/pkg/preset"
	"github.com/spf13/cobra"
)

func feasibleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feasible WIDTHxHEIGHT@HZ",
		Short: "Check whether a mode fits the EDID pixel clock field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, hz, err := preset.ParseMode(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := edid.ComputeTiming(w, h, hz)
			clock, limit, exceeds := edid.ClockInfo(w, h, hz)

			fmt.Fprintf(out, "Mode: %dx%d @ %dHz\n", w, h, hz)
			fmt.Fprintf(out, "  Horizontal: %d active + %d blank = %d total\n", t.HActive, t.HBlank, t.HTotal)
			fmt.Fprintf(out, "  Vertical:   %d active + %d blank = %d total\n", t.VActive, t.VBlank, t.VTotal)
			fmt.Fprintf(out, "  Pixel clock: %.2f MHz (max: %.2f MHz)\n", clock, limit)

			if !exceeds {
				fmt.Fprintln(out, "  ✓ Pixel clock within limits")
				return nil
			}

			fmt.Fprintln(out, "  ✗ Pixel clock exceeds the EDID limit")
			if v, ok := edid.FindBestMatch(w, h, hz); ok {
				vclock, _, _ := edid.ClockInfo(int(v.Width), int(v.Height), int(v.RefreshHz))
				fmt.Fprintf(out, "  → Closest VIC %d: %s (%.2f MHz)\n", v.Code, v.Name(), vclock)
			} else {
				fmt.Fprintln(out, "  No encodable VIC found")
			}
			return nil
		},
	}
}
