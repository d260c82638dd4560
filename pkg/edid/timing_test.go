package edid

import (
	"math"
	"testing"
)

func TestComputeTiming(t *testing.T) {
	testCases := []struct {
		width, height, hz      int
		hBlank, vBlank         int
		pixelClockHz           int64
		clock                  uint16
		hSyncOffset, hSyncWide int
		feasible               bool
	}{
		{1920, 1080, 60, 153, 27, 137688660, 13768, 30, 61, true},
		{640, 480, 24, 80, 23, 8691840, 869, 16, 32, true},
		{1280, 800, 90, 102, 23, 102364740, 10236, 20, 40, true},
		{2560, 1440, 144, 204, 36, 587471616, 58747, 40, 81, true},
		{3840, 2160, 60, 307, 54, 550887480, 55088, 61, 122, true},
		{3840, 2160, 120, 307, 54, 1101774960, MaxClockUnits, 61, 122, false},
		{7680, 4320, 240, 614, 108, 8814199680, MaxClockUnits, 122, 245, false},
		{5120, 2160, 60, 409, 54, 734472360, MaxClockUnits, 81, 163, false},
	}

	for _, tc := range testCases {
		got := ComputeTiming(tc.width, tc.height, tc.hz)
		if got.HBlank != tc.hBlank || got.HTotal != tc.width+tc.hBlank {
			t.Errorf("%dx%d@%d: h blank %d total %d", tc.width, tc.height, tc.hz, got.HBlank, got.HTotal)
		}
		if got.VBlank != tc.vBlank || got.VTotal != tc.height+tc.vBlank {
			t.Errorf("%dx%d@%d: v blank %d total %d", tc.width, tc.height, tc.hz, got.VBlank, got.VTotal)
		}
		if got.PixelClockHz != tc.pixelClockHz {
			t.Errorf("%dx%d@%d: pixel clock %d, want %d", tc.width, tc.height, tc.hz, got.PixelClockHz, tc.pixelClockHz)
		}
		if got.EncodedClock() != tc.clock {
			t.Errorf("%dx%d@%d: encoded clock %d, want %d", tc.width, tc.height, tc.hz, got.EncodedClock(), tc.clock)
		}
		if got.HSyncOffset != tc.hSyncOffset || got.HSyncWidth != tc.hSyncWide {
			t.Errorf("%dx%d@%d: h sync %d/%d", tc.width, tc.height, tc.hz, got.HSyncOffset, got.HSyncWidth)
		}
		if got.VSyncOffset != 2 || got.VSyncWidth != 6 {
			t.Errorf("%dx%d@%d: v sync %d/%d", tc.width, tc.height, tc.hz, got.VSyncOffset, got.VSyncWidth)
		}
		if IsFeasible(tc.width, tc.height, tc.hz) != tc.feasible {
			t.Errorf("%dx%d@%d: feasible = %v", tc.width, tc.height, tc.hz, !tc.feasible)
		}
	}
}

func TestTimingInvariant(t *testing.T) {
	for w := MinWidth; w <= MaxWidth; w += 401 {
		for h := MinHeight; h <= MaxHeight; h += 307 {
			for hz := MinRefreshHz; hz <= MaxRefreshHz; hz += 31 {
				tm := ComputeTiming(w, h, hz)
				if tm.PixelClockHz != int64(tm.HTotal)*int64(tm.VActive+tm.VBlank)*int64(hz) {
					t.Fatalf("%dx%d@%d: clock does not match totals", w, h, hz)
				}
				if tm.HBlank < 80 || tm.VBlank < 23 {
					t.Fatalf("%dx%d@%d: blanking below minimum", w, h, hz)
				}
				if tm.Feasible() != (tm.RawClockUnits() <= MaxClockUnits) {
					t.Fatalf("%dx%d@%d: feasibility mismatch", w, h, hz)
				}
			}
		}
	}
}

func TestComputeTimingZeroRefresh(t *testing.T) {
	tm := ComputeTiming(1920, 1080, 0)
	if tm.PixelClockHz != 0 || tm.VBlank != 27 {
		t.Errorf("zero refresh: clock %d, v blank %d", tm.PixelClockHz, tm.VBlank)
	}
	if !tm.Feasible() {
		t.Error("zero clock should be feasible")
	}
}

func TestClockInfo(t *testing.T) {
	mhz, maxMHz, exceeds := ClockInfo(1920, 1080, 60)
	if math.Abs(mhz-137.68866) > 1e-9 {
		t.Errorf("clock = %f MHz", mhz)
	}
	if math.Abs(maxMHz-655.35) > 1e-9 {
		t.Errorf("max = %f MHz", maxMHz)
	}
	if exceeds {
		t.Error("1080p60 should not exceed the clock limit")
	}

	if _, _, exceeds := ClockInfo(7680, 4320, 240); !exceeds {
		t.Error("4320p240 should exceed the clock limit")
	}
}

func TestScreenSize(t *testing.T) {
	testCases := []struct {
		width, height int
		hCm, vCm      int
	}{
		{1920, 1080, 50, 28},
		{1280, 800, 33, 20},
		{800, 1280, 21, 33},
		{7680, 4320, 203, 114},
		{640, 480, 16, 12},
		{0, 1080, 0, 0},
	}
	for _, tc := range testCases {
		h, v := ScreenSizeCm(tc.width, tc.height)
		if h != tc.hCm || v != tc.vCm {
			t.Errorf("%dx%d: %dx%d cm, want %dx%d", tc.width, tc.height, h, v, tc.hCm, tc.vCm)
		}
	}
}

func TestRequestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"1080p60", Request{Width: 1920, Height: 1080, RefreshHz: 60}, false},
		{"minimums", Request{Width: 640, Height: 480, RefreshHz: 24}, false},
		{"maximums", Request{Width: 7680, Height: 4320, RefreshHz: 240}, false},
		{"narrow", Request{Width: 639, Height: 480, RefreshHz: 60}, true},
		{"tall", Request{Width: 1920, Height: 4321, RefreshHz: 60}, true},
		{"slow", Request{Width: 1920, Height: 1080, RefreshHz: 23}, true},
		{"fast", Request{Width: 1920, Height: 1080, RefreshHz: 241}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
