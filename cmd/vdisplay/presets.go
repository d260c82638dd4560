package main

import (
	"fmt"

	"github.com/mscrnt/vdisplay/pkg/edid"
	"github.com/mscrnt/vdisplay/pkg/preset"
	"github.com/spf13/cobra"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the resolution and refresh rate presets",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Resolutions:")
			for _, r := range preset.Resolutions() {
				fmt.Fprintf(out, "  %s. %s\n", r.Key, r)
			}

			fmt.Fprintln(out, "\nRefresh rates:")
			for _, r := range preset.RefreshRates() {
				fmt.Fprintf(out, "  %s. %d Hz\n", r.Key, r.Hz)
			}

			// Which combinations need a VIC substitution
			fmt.Fprintln(out, "\nHighest encodable refresh rate per resolution:")
			for _, r := range preset.Resolutions() {
				best := 0
				for _, rate := range preset.RefreshRates() {
					if edid.IsFeasible(r.Width, r.Height, rate.Hz) {
						best = rate.Hz
					}
				}
				if best == 0 {
					fmt.Fprintf(out, "  %-30s none\n", r)
					continue
				}
				fmt.Fprintf(out, "  %-30s %d Hz\n", r, best)
			}
		},
	}
}
