package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mscrnt/vdisplay/pkg/db"
	"github.com/mscrnt/vdisplay/pkg/edid"
	"github.com/mscrnt/vdisplay/pkg/preset"
	"github.com/spf13/cobra"
)

var (
	genResolution  string
	genRefreshHz   int
	genNoHDR       bool
	genName        string
	genOutput      string
	genInteractive bool
	genVICFallback bool
)

// generateParams is everything needed to produce one EDID file
type generateParams struct {
	Width     int
	Height    int
	RefreshHz int
	HDR       bool
	Name      string
	Output    string
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an EDID file",
		Long: `Generate a 256-byte EDID with configurable resolution, refresh rate
and HDR metadata. Without --resolution and --hz an interactive menu is shown.

Examples:
  vdisplay generate                                   # Interactive mode
  vdisplay generate -r 1920x1080 --hz 60              # 1080p@60Hz with HDR
  vdisplay generate -r 2560x1440 --hz 144             # 1440p@144Hz with HDR
  vdisplay generate -r 3840x2160 --hz 120 --no-hdr    # 4K@120Hz without HDR
  vdisplay generate -r 1280x800 --hz 90 -o deck.bin   # Steam Deck specs`,
		RunE: runGenerate,
	}

	cmd.Flags().StringVarP(&genResolution, "resolution", "r", "", "Resolution as WIDTHxHEIGHT (default: 1920x1080)")
	cmd.Flags().IntVar(&genRefreshHz, "hz", 0, "Refresh rate in Hz (default: 60)")
	cmd.Flags().BoolVar(&genNoHDR, "no-hdr", false, "Disable HDR metadata")
	cmd.Flags().StringVarP(&genName, "name", "n", edid.DefaultName, "Display name (max 13 characters)")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default from config: edid.bin)")
	cmd.Flags().BoolVarP(&genInteractive, "interactive", "i", false, "Run in interactive mode")
	cmd.Flags().BoolVar(&genVICFallback, "vic-fallback", false, "Use the closest standard timing when the pixel clock overflows")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	var params generateParams
	if genInteractive || (genResolution == "" && genRefreshHz == 0) {
		params = promptGenerate(bufio.NewReader(cmd.InOrStdin()), out, cfg.Output)
	} else {
		var err error
		params, err = flagGenerateParams()
		if err != nil {
			return err
		}
	}

	req, err := params.request()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\nGenerating EDID...\n%s\n", rule, rule)

	res := edid.Resolve(req)
	if !res.Feasible || res.Fallback {
		fmt.Fprintf(out, "\nPixel clock %.2f MHz exceeds the %.2f MHz EDID limit.\n", res.OriginalMHz, res.LimitMHz)
	}
	if !genVICFallback || !res.Fallback {
		res.Request = req
	} else {
		fmt.Fprintf(out, "Using VIC %d: %s\n", res.VIC.Code, res.VIC.Name())
	}
	if !res.Request.Feasible() {
		fmt.Fprintln(out, "Warning: the pixel clock field is clamped; sinks will see a lower refresh rate.")
	}

	data := edid.Encode(res.Request)
	if err := os.WriteFile(params.Output, data[:], 0o644); err != nil {
		return fmt.Errorf("failed to write EDID: %w", err)
	}

	printSummary(out, params.Output, res.Request, data[:])
	recordGenerated(params.Output, res, data[:])
	return nil
}

const rule = "============================================================"

func flagGenerateParams() (generateParams, error) {
	p := generateParams{
		Width:     preset.DefaultWidth,
		Height:    preset.DefaultHeight,
		RefreshHz: preset.DefaultRefreshHz,
		HDR:       !genNoHDR,
		Name:      genName,
		Output:    genOutput,
	}
	if genResolution != "" {
		w, h, err := preset.ParseResolution(genResolution)
		if err != nil {
			return p, err
		}
		p.Width, p.Height = w, h
	}
	if genRefreshHz != 0 {
		p.RefreshHz = genRefreshHz
	}
	if p.Output == "" {
		p.Output = cfg.Output
	}
	if p.Output == "" {
		p.Output = "edid.bin"
	}
	return p, nil
}

// request validates the parameters and converts them for the encoder
func (p generateParams) request() (edid.Request, error) {
	for _, v := range []int{p.Width, p.Height, p.RefreshHz} {
		if v < 0 || v > math.MaxUint16 {
			return edid.Request{}, fmt.Errorf("mode %dx%d@%d out of range", p.Width, p.Height, p.RefreshHz)
		}
	}
	req := edid.Request{
		Width:     uint16(p.Width),
		Height:    uint16(p.Height),
		RefreshHz: uint16(p.RefreshHz),
		HDR:       p.HDR,
		Name:      truncateName(p.Name),
	}
	return req, req.Validate()
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) > edid.NameLength {
		r = r[:edid.NameLength]
	}
	return string(r)
}

func printSummary(out io.Writer, path string, req edid.Request, data []byte) {
	fmt.Fprintf(out, "\n✓ Generated EDID: %s\n", path)
	fmt.Fprintf(out, "  Resolution: %dx%d @ %dHz\n", req.Width, req.Height, req.RefreshHz)
	fmt.Fprintf(out, "  Display Name: %s\n", req.Name)
	fmt.Fprintf(out, "  HDR: %s\n", formatBool(req.HDR, "Enabled", "Disabled"))
	if req.HDR {
		fmt.Fprintln(out, "    - BT.2020 RGB color space")
		fmt.Fprintln(out, "    - HDR10 (PQ/ST 2084)")
		fmt.Fprintln(out, "    - 10-bit color depth")
		fmt.Fprintln(out, "    - Max luminance: 1000 cd/m²")
		fmt.Fprintln(out, "    - Max frame avg: 400 cd/m²")
		fmt.Fprintln(out, "    - Min luminance: 0.05 cd/m²")
	}
	fmt.Fprintf(out, "  File Size: %d bytes\n", len(data))
	fmt.Fprintf(out, "\n%s\n", rule)

	fmt.Fprintln(out, "\nFirst 32 bytes (hex):")
	fmt.Fprintf(out, "  %s\n", hexBytes(data[:32]))
	fmt.Fprintln(out, rule)
}

// recordGenerated adds the EDID to the history; failures are only logged
func recordGenerated(path string, res edid.Resolution, data []byte) {
	database, err := openHistory()
	if err != nil {
		log.Printf("History disabled: %v", err)
		return
	}
	defer func() { _ = database.Close() }()

	req := res.Request
	clockMHz, _, _ := edid.ClockInfo(int(req.Width), int(req.Height), int(req.RefreshHz))

	rec := &db.EDIDRecord{
		Source:    db.SourceGenerate,
		Width:     int(req.Width),
		Height:    int(req.Height),
		RefreshHz: int(req.RefreshHz),
		HDR:       req.HDR,
		Name:      req.Name,
		Requested: res.Original.String(),
		ClockMHz:  clockMHz,
		Path:      path,
		Data:      data,
	}
	if req != res.Original {
		rec.Fallback = true
		rec.VIC = int(res.VIC.Code)
	}
	if err := database.CreateEDID(rec); err != nil {
		log.Printf("Failed to record EDID: %v", err)
	}
}

// promptGenerate runs the interactive menu. Unparseable answers fall back
// to 1920x1080, 60 Hz, HDR on, "Custom Display" and edid.bin.
func promptGenerate(in *bufio.Reader, out io.Writer, defaultOutput string) generateParams {
	p := generateParams{
		Width:     preset.DefaultWidth,
		Height:    preset.DefaultHeight,
		RefreshHz: preset.DefaultRefreshHz,
	}
	if defaultOutput == "" {
		defaultOutput = "edid.bin"
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Interactive EDID Generator")
	fmt.Fprintln(out, rule)

	fmt.Fprintln(out, "\nSelect Resolution:")
	for _, r := range preset.Resolutions() {
		fmt.Fprintf(out, "  %s. %s\n", r.Key, r)
	}
	fmt.Fprintln(out, "  0. Custom resolution")

	switch choice := ask(in, out, "\nEnter choice (1-9 or 0 for custom): "); choice {
	case "0":
		w, h, err := preset.ParseResolution(ask(in, out, "Enter resolution (WIDTHxHEIGHT, e.g., 1920x1080): "))
		if err != nil {
			fmt.Fprintln(out, "Invalid format. Using 1920x1080")
		} else {
			p.Width, p.Height = w, h
		}
	default:
		if r, ok := preset.LookupResolution(choice); ok {
			p.Width, p.Height = r.Width, r.Height
		} else {
			fmt.Fprintln(out, "Invalid choice. Using 1920x1080")
		}
	}

	fmt.Fprintln(out, "\nSelect Refresh Rate:")
	for _, r := range preset.RefreshRates() {
		fmt.Fprintf(out, "  %s. %d Hz\n", r.Key, r.Hz)
	}
	fmt.Fprintln(out, "  0. Custom refresh rate")

	switch choice := ask(in, out, "\nEnter choice (1-7 or 0 for custom): "); choice {
	case "0":
		hz, err := strconv.Atoi(ask(in, out, "Enter refresh rate (Hz): "))
		if err != nil {
			fmt.Fprintln(out, "Invalid input. Using 60 Hz")
		} else {
			p.RefreshHz = hz
		}
	default:
		if r, ok := preset.LookupRefreshRate(choice); ok {
			p.RefreshHz = r.Hz
		} else {
			fmt.Fprintln(out, "Invalid choice. Using 60 Hz")
		}
	}

	fmt.Fprintln(out, "\nEnable HDR?")
	fmt.Fprintln(out, "  1. Yes (HDR10, BT.2020, 10-bit)")
	fmt.Fprintln(out, "  2. No (Standard SDR)")
	p.HDR = ask(in, out, "\nEnter choice (1 or 2): ") != "2"

	p.Name = ask(in, out, "\nEnter display name (max 13 chars, or press Enter for 'Custom Display'): ")
	if p.Name == "" {
		p.Name = edid.DefaultName
	}
	p.Name = truncateName(p.Name)

	p.Output = ask(in, out, fmt.Sprintf("\nEnter output filename (or press Enter for '%s'): ", defaultOutput))
	if p.Output == "" {
		p.Output = defaultOutput
	}
	if !strings.HasSuffix(p.Output, ".bin") {
		p.Output += ".bin"
	}

	return p
}

// ask prints a prompt and returns the trimmed answer; EOF yields ""
func ask(in *bufio.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
