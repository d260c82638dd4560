package edid

import (
	"math"
	"sort"
)

// Score weights. Refresh rate dominates, resolution is secondary and aspect
// mismatch grows steeply beyond aspectThreshold.
const (
	refreshWeight    = 100000
	resolutionWeight = 1000
	aspectWeight     = 500
	aspectThreshold  = 0.3
	aspectOverWeight = 2000
)

// Match is a scored VIC candidate
type Match struct {
	VIC   VIC     `json:"vic"`
	Score float64 `json:"score"`
}

// Score rates how far a VIC is from the requested mode; lower is closer.
// The target must have a non-zero pixel count.
func Score(v VIC, width, height, refreshHz int) float64 {
	refreshDiff := math.Abs(float64(int(v.RefreshHz) - refreshHz))

	target := float64(width * height)
	resolutionDiff := math.Abs(float64(v.Pixels())-target) / target

	aspectDiff := math.Abs(float64(v.Width)/float64(v.Height) - float64(width)/float64(height))
	aspectPenalty := float64(aspectDiff * aspectWeight)
	if aspectDiff > aspectThreshold {
		aspectPenalty += float64((aspectDiff - aspectThreshold) * aspectOverWeight)
	}

	// Explicit conversions keep each product rounded before the sum so the
	// score is identical on architectures that fuse multiply-add.
	return float64(refreshDiff*refreshWeight) + float64(resolutionDiff*resolutionWeight) + aspectPenalty
}

// RankMatches scores every feasible VIC against the target and returns them
// best first, ties broken by lower code. limit <= 0 returns all candidates.
func RankMatches(width, height, refreshHz, limit int) []Match {
	if width <= 0 || height <= 0 {
		return nil
	}

	matches := make([]Match, 0, len(vicTable))
	for _, v := range vicTable {
		if !v.Feasible() {
			continue
		}
		matches = append(matches, Match{VIC: v, Score: Score(v, width, height, refreshHz)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].VIC.Code < matches[j].VIC.Code
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// FindBestMatch returns the feasible VIC closest to the requested mode.
// ok is false when no VIC survives the feasibility filter.
func FindBestMatch(width, height, refreshHz int) (VIC, bool) {
	matches := RankMatches(width, height, refreshHz, 1)
	if len(matches) == 0 {
		return VIC{}, false
	}
	return matches[0].VIC, true
}

// Resolution is the outcome of fitting a request to the pixel clock limit
type Resolution struct {
	Request     Request
	Original    Request
	Feasible    bool // Final request fits the clock field
	Fallback    bool // Request was replaced by a VIC timing
	VIC         VIC
	ClockMHz    float64
	LimitMHz    float64
	OriginalMHz float64
}

// Resolve substitutes the closest standard timing when the requested mode
// cannot be encoded without clamping. HDR and name are preserved. When no
// VIC is feasible the request is returned unchanged.
func Resolve(req Request) Resolution {
	w, h, hz := int(req.Width), int(req.Height), int(req.RefreshHz)
	clock, limit, exceeds := ClockInfo(w, h, hz)

	res := Resolution{
		Request:     req,
		Original:    req,
		Feasible:    !exceeds,
		ClockMHz:    clock,
		LimitMHz:    limit,
		OriginalMHz: clock,
	}
	if !exceeds {
		return res
	}

	vic, ok := FindBestMatch(w, h, hz)
	if !ok {
		return res
	}

	res.Request.Width = vic.Width
	res.Request.Height = vic.Height
	res.Request.RefreshHz = vic.RefreshHz
	res.Fallback = true
	res.Feasible = true
	res.VIC = vic
	res.ClockMHz, _, _ = ClockInfo(int(vic.Width), int(vic.Height), int(vic.RefreshHz))
	return res
}
