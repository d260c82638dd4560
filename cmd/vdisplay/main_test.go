package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mscrnt/vdisplay/pkg/db"
	"github.com/mscrnt/vdisplay/pkg/edid"
)

// runCLI executes the root command against a throwaway work directory
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VDISPLAY_DB_PATH", "")

	cfgPath := filepath.Join(dir, "config.yaml")
	content := "workDir: work\nlogs:\n  enabled: false\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), dir, err
}

func TestGenerateFlags(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "deck.bin")
	out, dir, err := runCLI(t, "", "generate", "-r", "1280x800", "--hz", "90", "-o", outFile)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	want := edid.Encode(edid.Request{Width: 1280, Height: 800, RefreshHz: 90, HDR: true, Name: edid.DefaultName})
	if !bytes.Equal(data, want[:]) {
		t.Error("written EDID differs from Encode")
	}
	if !strings.Contains(out, "00 FF FF FF FF FF FF 00") {
		t.Errorf("hex preview missing:\n%s", out)
	}
	if !strings.Contains(out, "HDR: Enabled") {
		t.Errorf("summary missing HDR line:\n%s", out)
	}

	database, err := db.Open(filepath.Join(dir, "work", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	records, err := database.ListEDIDs(db.EDIDFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Mode() != "1280x800@90" || records[0].Source != db.SourceGenerate {
		t.Errorf("unexpected history %+v", records)
	}
}

func TestGenerateVICFallback(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "8k.bin")
	out, _, err := runCLI(t, "", "generate", "-r", "7680x4320", "--hz", "240", "--no-hdr", "--vic-fallback", "-o", outFile)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Using VIC 56") {
		t.Errorf("fallback not reported:\n%s", out)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	want := edid.Encode(edid.Request{Width: 720, Height: 480, RefreshHz: 240, Name: edid.DefaultName})
	if !bytes.Equal(data, want[:]) {
		t.Error("fallback EDID differs from Encode of VIC 56")
	}
}

func TestGenerateRejectsRange(t *testing.T) {
	testCases := []struct {
		args []string
		msg  string
	}{
		{[]string{"-r", "9000x1080", "--hz", "60"}, "width 9000 out of range (640-7680)"},
		{[]string{"-r", "1920x100", "--hz", "60"}, "height 100 out of range (480-4320)"},
		{[]string{"-r", "1920x1080", "--hz", "500"}, "refresh rate 500 out of range (24-240)"},
		{[]string{"-r", "1920by1080"}, "invalid resolution format"},
	}
	for _, tc := range testCases {
		args := append([]string{"generate", "-o", filepath.Join(t.TempDir(), "x.bin")}, tc.args...)
		_, _, err := runCLI(t, "", args...)
		if err == nil || !strings.Contains(err.Error(), tc.msg) {
			t.Errorf("%v: error = %v, want %q", tc.args, err, tc.msg)
		}
	}
}

func TestPromptGenerate(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  generateParams
	}{
		{
			name:  "presets",
			input: "3\n5\n1\nGaming\nout\n",
			want:  generateParams{Width: 2560, Height: 1440, RefreshHz: 144, HDR: true, Name: "Gaming", Output: "out.bin"},
		},
		{
			name:  "custom values",
			input: "0\n1600x900\n0\n100\n2\n\nmine.bin\n",
			want:  generateParams{Width: 1600, Height: 900, RefreshHz: 100, HDR: false, Name: "Custom Displa", Output: "mine.bin"},
		},
		{
			name:  "invalid answers use defaults",
			input: "x\nx\n\nA very long display name\n\n",
			want:  generateParams{Width: 1920, Height: 1080, RefreshHz: 60, HDR: true, Name: "A very long d", Output: "edid.bin"},
		},
		{
			name:  "bad custom input",
			input: "0\nwide\n0\nfast\n",
			want:  generateParams{Width: 1920, Height: 1080, RefreshHz: 60, HDR: true, Name: "Custom Displa", Output: "edid.bin"},
		},
		{
			name:  "trailing garbage after refresh rate",
			input: "1\n0\n100abc\n",
			want:  generateParams{Width: 1280, Height: 720, RefreshHz: 60, HDR: true, Name: "Custom Displa", Output: "edid.bin"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got := promptGenerate(bufio.NewReader(strings.NewReader(tc.input)), &out, "")
			if got != tc.want {
				t.Errorf("promptGenerate() = %+v, want %+v", got, tc.want)
			}
			if !strings.Contains(out.String(), "Steam Deck (portrait) (800x1280)") {
				t.Error("resolution menu not printed")
			}
		})
	}
}

func TestVICMatchCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "vic", "match", "1920x1080@144", "--top", "3")
	if err != nil {
		t.Fatalf("vic match failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header, rule and 3 matches:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "1     46") {
		t.Errorf("first match line %q", lines[2])
	}
}

func TestVICShowCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "vic", "show", "16")
	if err != nil {
		t.Fatalf("vic show failed: %v", err)
	}
	if !strings.Contains(out, "VIC 16: 1920x1080p@60 16:9") || !strings.Contains(out, "Encodable: yes") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, err = runCLI(t, "", "vic", "show", "199")
	if err != nil {
		t.Fatalf("vic show failed: %v", err)
	}
	if !strings.Contains(out, "Encodable: no") {
		t.Errorf("4320p60 should not be encodable:\n%s", out)
	}

	for _, arg := range []string{"150", "abc", "70000"} {
		if _, _, err := runCLI(t, "", "vic", "show", arg); err == nil {
			t.Errorf("vic show %s succeeded", arg)
		}
	}
}

func TestFeasibleCommand(t *testing.T) {
	out, _, err := runCLI(t, "", "feasible", "3840x2160@120")
	if err != nil {
		t.Fatalf("feasible failed: %v", err)
	}
	if !strings.Contains(out, "exceeds") || !strings.Contains(out, "Closest VIC 46") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, err = runCLI(t, "", "feasible", "1920x1080@60")
	if err != nil {
		t.Fatalf("feasible failed: %v", err)
	}
	if !strings.Contains(out, "137.69 MHz (max: 655.35 MHz)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	out, _, err := runCLI(t, "", "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "No virtual display connected") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHexBytes(t *testing.T) {
	if got := hexBytes([]byte{0x00, 0xAB, 0x0F}); got != "00 AB 0F" {
		t.Errorf("hexBytes() = %q", got)
	}
}
