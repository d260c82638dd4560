package edid

import "fmt"

// Accepted ranges for externally supplied modes. Encode itself does not
// enforce them.
const (
	MinWidth     = 640
	MaxWidth     = 7680
	MinHeight    = 480
	MaxHeight    = 4320
	MinRefreshHz = 24
	MaxRefreshHz = 240
)

// DefaultName is the product name used when none is given
const DefaultName = "Custom Display"

// Request describes the display an EDID is generated for
type Request struct {
	Width     uint16 `json:"width"`
	Height    uint16 `json:"height"`
	RefreshHz uint16 `json:"refreshHz"`
	HDR       bool   `json:"hdr"`
	Name      string `json:"name"`
}

// Validate checks the mode against the supported ranges
func (r Request) Validate() error {
	if r.Width < MinWidth || r.Width > MaxWidth {
		return fmt.Errorf("width %d out of range (%d-%d)", r.Width, MinWidth, MaxWidth)
	}
	if r.Height < MinHeight || r.Height > MaxHeight {
		return fmt.Errorf("height %d out of range (%d-%d)", r.Height, MinHeight, MaxHeight)
	}
	if r.RefreshHz < MinRefreshHz || r.RefreshHz > MaxRefreshHz {
		return fmt.Errorf("refresh rate %d out of range (%d-%d)", r.RefreshHz, MinRefreshHz, MaxRefreshHz)
	}
	return nil
}

// Timing returns the derived timing for the request
func (r Request) Timing() Timing {
	return ComputeTiming(int(r.Width), int(r.Height), int(r.RefreshHz))
}

// Feasible reports whether the request encodes without clamping
func (r Request) Feasible() bool {
	return r.Timing().Feasible()
}

func (r Request) String() string {
	return fmt.Sprintf("%dx%d@%dHz", r.Width, r.Height, r.RefreshHz)
}
