package edid

// Timing limits
const (
	// MaxClockUnits is the largest pixel clock the DTD can carry, in 10 kHz units.
	MaxClockUnits = 0xFFFF
	// ClockUnitHz is the DTD pixel clock resolution.
	ClockUnitHz = 10000

	minHBlank = 80
	minVBlank = 23

	vSyncOffset = 2
	vSyncWidth  = 6
)

// Timing holds the reduced-blanking parameters derived for one mode
type Timing struct {
	HActive      int
	HBlank       int
	HTotal       int
	VActive      int
	VBlank       int
	VTotal       int
	RefreshHz    int
	PixelClockHz int64

	HSyncOffset int
	HSyncWidth  int
	VSyncOffset int
	VSyncWidth  int
}

// ComputeTiming derives blanking intervals and the pixel clock for a mode.
// The vertical blanking is solved so that the clock reproduces the
// requested refresh rate exactly.
func ComputeTiming(width, height, refreshHz int) Timing {
	hBlank := max(minHBlank, int(float64(width)*0.08))
	hTotal := width + hBlank

	vBlank := max(minVBlank, int(float64(height)*0.025))
	if line := int64(hTotal) * int64(refreshHz); line != 0 {
		estimate := line * int64(height+vBlank)
		vBlank = max(minVBlank, int(estimate/line)-height)
	}

	return Timing{
		HActive:      width,
		HBlank:       hBlank,
		HTotal:       hTotal,
		VActive:      height,
		VBlank:       vBlank,
		VTotal:       height + vBlank,
		RefreshHz:    refreshHz,
		PixelClockHz: int64(hTotal) * int64(height+vBlank) * int64(refreshHz),
		HSyncOffset:  int(float64(hBlank) * 0.2),
		HSyncWidth:   int(float64(hBlank) * 0.4),
		VSyncOffset:  vSyncOffset,
		VSyncWidth:   vSyncWidth,
	}
}

// RawClockUnits returns the pixel clock in 10 kHz units without clamping
func (t Timing) RawClockUnits() int64 {
	return t.PixelClockHz / ClockUnitHz
}

// EncodedClock returns the value written to the DTD pixel clock field.
// Clocks beyond the field width are clamped to MaxClockUnits.
func (t Timing) EncodedClock() uint16 {
	units := t.RawClockUnits()
	if units > MaxClockUnits {
		return MaxClockUnits
	}
	if units < 0 {
		return 0
	}
	return uint16(units)
}

// Feasible reports whether the pixel clock fits the DTD field unclamped
func (t Timing) Feasible() bool {
	return t.RawClockUnits() <= MaxClockUnits
}

// IsFeasible reports whether a mode can be encoded without clamping the
// pixel clock, which would misrepresent the refresh rate.
func IsFeasible(width, height, refreshHz int) bool {
	return ComputeTiming(width, height, refreshHz).Feasible()
}

// ClockInfo returns the pixel clock and the DTD maximum in MHz, and whether
// the mode exceeds it.
func ClockInfo(width, height, refreshHz int) (clockMHz, maxMHz float64, exceeds bool) {
	t := ComputeTiming(width, height, refreshHz)
	clockMHz = float64(t.PixelClockHz) / 1e6
	maxMHz = float64(MaxClockUnits) * ClockUnitHz / 1e6
	return clockMHz, maxMHz, !t.Feasible()
}
