package edid

import "fmt"

// VIC is one CEA-861 Video Identification Code timing
type VIC struct {
	Code       uint16 `json:"vic"`
	Width      uint16 `json:"width"`
	Height     uint16 `json:"height"`
	RefreshHz  uint16 `json:"refreshHz"`
	Interlaced bool   `json:"interlaced"`
	Aspect     string `json:"pictureAspect"` // Picture aspect ratio, not the pixel ratio
}

// Name returns the conventional format name, e.g. "1920x1080p@60 16:9"
func (v VIC) Name() string {
	scan := "p"
	if v.Interlaced {
		scan = "i"
	}
	return fmt.Sprintf("%dx%d%s@%d %s", v.Width, v.Height, scan, v.RefreshHz, v.Aspect)
}

// Pixels returns the active pixel count
func (v VIC) Pixels() int {
	return int(v.Width) * int(v.Height)
}

// Feasible reports whether the VIC fits the DTD pixel clock field when
// encoded with reduced blanking.
func (v VIC) Feasible() bool {
	return IsFeasible(int(v.Width), int(v.Height), int(v.RefreshHz))
}

const (
	ar4x3     = "4:3"
	ar16x9    = "16:9"
	ar64x27   = "64:27"
	ar256x135 = "256:135"
)

func progressive(code, w, h, hz uint16, aspect string) VIC {
	return VIC{Code: code, Width: w, Height: h, RefreshHz: hz, Aspect: aspect}
}

func interlaced(code, w, h, hz uint16, aspect string) VIC {
	return VIC{Code: code, Width: w, Height: h, RefreshHz: hz, Interlaced: true, Aspect: aspect}
}

// vicTable lists the CTA-861 formats in ascending code order. Widths are
// the transmitted active widths (pixel-repeated formats use 1440/2880);
// refresh rates are nominal integer rates.
var vicTable = [...]VIC{
	progressive(1, 640, 480, 60, ar4x3),
	progressive(2, 720, 480, 60, ar4x3),
	progressive(3, 720, 480, 60, ar16x9),
	progressive(4, 1280, 720, 60, ar16x9),
	interlaced(5, 1920, 1080, 60, ar16x9),
	interlaced(6, 1440, 480, 60, ar4x3),
	interlaced(7, 1440, 480, 60, ar16x9),
	progressive(8, 1440, 240, 60, ar4x3),
	progressive(9, 1440, 240, 60, ar16x9),
	interlaced(10, 2880, 480, 60, ar4x3),
	interlaced(11, 2880, 480, 60, ar16x9),
	progressive(12, 2880, 240, 60, ar4x3),
	progressive(13, 2880, 240, 60, ar16x9),
	progressive(14, 1440, 480, 60, ar4x3),
	progressive(15, 1440, 480, 60, ar16x9),
	progressive(16, 1920, 1080, 60, ar16x9),
	progressive(17, 720, 576, 50, ar4x3),
	progressive(18, 720, 576, 50, ar16x9),
	progressive(19, 1280, 720, 50, ar16x9),
	interlaced(20, 1920, 1080, 50, ar16x9),
	interlaced(21, 1440, 576, 50, ar4x3),
	interlaced(22, 1440, 576, 50, ar16x9),
	progressive(23, 1440, 288, 50, ar4x3),
	progressive(24, 1440, 288, 50, ar16x9),
	interlaced(25, 2880, 576, 50, ar4x3),
	interlaced(26, 2880, 576, 50, ar16x9),
	progressive(27, 2880, 288, 50, ar4x3),
	progressive(28, 2880, 288, 50, ar16x9),
	progressive(29, 1440, 576, 50, ar4x3),
	progressive(30, 1440, 576, 50, ar16x9),
	progressive(31, 1920, 1080, 50, ar16x9),
	progressive(32, 1920, 1080, 24, ar16x9),
	progressive(33, 1920, 1080, 25, ar16x9),
	progressive(34, 1920, 1080, 30, ar16x9),
	progressive(35, 2880, 480, 60, ar4x3),
	progressive(36, 2880, 480, 60, ar16x9),
	progressive(37, 2880, 576, 50, ar4x3),
	progressive(38, 2880, 576, 50, ar16x9),
	interlaced(39, 1920, 1080, 50, ar16x9),
	interlaced(40, 1920, 1080, 100, ar16x9),
	progressive(41, 1280, 720, 100, ar16x9),
	progressive(42, 720, 576, 100, ar4x3),
	progressive(43, 720, 576, 100, ar16x9),
	interlaced(44, 1440, 576, 100, ar4x3),
	interlaced(45, 1440, 576, 100, ar16x9),
	interlaced(46, 1920, 1080, 120, ar16x9),
	progressive(47, 1280, 720, 120, ar16x9),
	progressive(48, 720, 480, 120, ar4x3),
	progressive(49, 720, 480, 120, ar16x9),
	interlaced(50, 1440, 480, 120, ar4x3),
	interlaced(51, 1440, 480, 120, ar16x9),
	progressive(52, 720, 576, 200, ar4x3),
	progressive(53, 720, 576, 200, ar16x9),
	interlaced(54, 1440, 576, 200, ar4x3),
	interlaced(55, 1440, 576, 200, ar16x9),
	progressive(56, 720, 480, 240, ar4x3),
	progressive(57, 720, 480, 240, ar16x9),
	interlaced(58, 1440, 480, 240, ar4x3),
	interlaced(59, 1440, 480, 240, ar16x9),
	progressive(60, 1280, 720, 24, ar16x9),
	progressive(61, 1280, 720, 25, ar16x9),
	progressive(62, 1280, 720, 30, ar16x9),
	progressive(63, 1920, 1080, 120, ar16x9),
	progressive(64, 1920, 1080, 100, ar16x9),
	progressive(65, 1280, 720, 24, ar64x27),
	progressive(66, 1280, 720, 25, ar64x27),
	progressive(67, 1280, 720, 30, ar64x27),
	progressive(68, 1280, 720, 50, ar64x27),
	progressive(69, 1280, 720, 60, ar64x27),
	progressive(70, 1280, 720, 100, ar64x27),
	progressive(71, 1280, 720, 120, ar64x27),
	progressive(72, 1920, 1080, 24, ar64x27),
	progressive(73, 1920, 1080, 25, ar64x27),
	progressive(74, 1920, 1080, 30, ar64x27),
	progressive(75, 1920, 1080, 50, ar64x27),
	progressive(76, 1920, 1080, 60, ar64x27),
	progressive(77, 1920, 1080, 100, ar64x27),
	progressive(78, 1920, 1080, 120, ar64x27),
	progressive(79, 1680, 720, 24, ar64x27),
	progressive(80, 1680, 720, 25, ar64x27),
	progressive(81, 1680, 720, 30, ar64x27),
	progressive(82, 1680, 720, 50, ar64x27),
	progressive(83, 1680, 720, 60, ar64x27),
	progressive(84, 1680, 720, 100, ar64x27),
	progressive(85, 1680, 720, 120, ar64x27),
	progressive(86, 2560, 1080, 24, ar64x27),
	progressive(87, 2560, 1080, 25, ar64x27),
	progressive(88, 2560, 1080, 30, ar64x27),
	progressive(89, 2560, 1080, 50, ar64x27),
	progressive(90, 2560, 1080, 60, ar64x27),
	progressive(91, 2560, 1080, 100, ar64x27),
	progressive(92, 2560, 1080, 120, ar64x27),
	progressive(93, 3840, 2160, 24, ar16x9),
	progressive(94, 3840, 2160, 25, ar16x9),
	progressive(95, 3840, 2160, 30, ar16x9),
	progressive(96, 3840, 2160, 50, ar16x9),
	progressive(97, 3840, 2160, 60, ar16x9),
	progressive(98, 4096, 2160, 24, ar256x135),
	progressive(99, 4096, 2160, 25, ar256x135),
	progressive(100, 4096, 2160, 30, ar256x135),
	progressive(101, 4096, 2160, 50, ar256x135),
	progressive(102, 4096, 2160, 60, ar256x135),
	progressive(103, 3840, 2160, 24, ar64x27),
	progressive(104, 3840, 2160, 25, ar64x27),
	progressive(105, 3840, 2160, 30, ar64x27),
	progressive(106, 3840, 2160, 50, ar64x27),
	progressive(107, 3840, 2160, 60, ar64x27),
	progressive(108, 1280, 720, 48, ar16x9),
	progressive(109, 1280, 720, 48, ar64x27),
	progressive(110, 1680, 720, 48, ar64x27),
	progressive(111, 1920, 1080, 48, ar16x9),
	progressive(112, 1920, 1080, 48, ar64x27),
	progressive(113, 2560, 1080, 48, ar64x27),
	progressive(114, 3840, 2160, 48, ar16x9),
	progressive(115, 4096, 2160, 48, ar256x135),
	progressive(116, 3840, 2160, 48, ar64x27),
	progressive(117, 3840, 2160, 100, ar16x9),
	progressive(118, 3840, 2160, 120, ar16x9),
	progressive(119, 3840, 2160, 100, ar64x27),
	progressive(120, 3840, 2160, 120, ar64x27),
	progressive(121, 5120, 2160, 24, ar64x27),
	progressive(122, 5120, 2160, 25, ar64x27),
	progressive(123, 5120, 2160, 30, ar64x27),
	progressive(124, 5120, 2160, 48, ar64x27),
	progressive(125, 5120, 2160, 50, ar64x27),
	progressive(126, 5120, 2160, 60, ar64x27),
	progressive(127, 5120, 2160, 100, ar64x27),

	// CTA-861-G extended range
	progressive(193, 5120, 2160, 120, ar64x27),
	progressive(194, 7680, 4320, 24, ar16x9),
	progressive(195, 7680, 4320, 25, ar16x9),
	progressive(196, 7680, 4320, 30, ar16x9),
	progressive(197, 7680, 4320, 48, ar16x9),
	progressive(198, 7680, 4320, 50, ar16x9),
	progressive(199, 7680, 4320, 60, ar16x9),
	progressive(200, 7680, 4320, 100, ar16x9),
	progressive(201, 7680, 4320, 120, ar16x9),
	progressive(202, 7680, 4320, 24, ar64x27),
	progressive(203, 7680, 4320, 25, ar64x27),
	progressive(204, 7680, 4320, 30, ar64x27),
	progressive(205, 7680, 4320, 48, ar64x27),
	progressive(206, 7680, 4320, 50, ar64x27),
	progressive(207, 7680, 4320, 60, ar64x27),
	progressive(208, 7680, 4320, 100, ar64x27),
	progressive(209, 7680, 4320, 120, ar64x27),
	progressive(210, 10240, 4320, 24, ar64x27),
	progressive(211, 10240, 4320, 25, ar64x27),
	progressive(212, 10240, 4320, 30, ar64x27),
	progressive(213, 10240, 4320, 48, ar64x27),
	progressive(214, 10240, 4320, 50, ar64x27),
	progressive(215, 10240, 4320, 60, ar64x27),
	progressive(216, 10240, 4320, 100, ar64x27),
	progressive(217, 10240, 4320, 120, ar64x27),
	progressive(218, 4096, 2160, 100, ar256x135),
	progressive(219, 4096, 2160, 120, ar256x135),
}

// VICs returns a copy of the VIC table in ascending code order
func VICs() []VIC {
	out := make([]VIC, len(vicTable))
	copy(out, vicTable[:])
	return out
}

// LookupVIC returns the table entry for a code
func LookupVIC(code uint16) (VIC, bool) {
	for _, v := range vicTable {
		if v.Code == code {
			return v, true
		}
	}
	return VIC{}, false
}
