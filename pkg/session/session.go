// Package session connects and disconnects a virtual display by
// overriding the EDID of an unused DRM connector.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/mscrnt/vdisplay/pkg/db"
	"github.com/mscrnt/vdisplay/pkg/drm"
	"github.com/mscrnt/vdisplay/pkg/edid"
)

// Display is the connector access needed by a session; *drm.Manager
// implements it
type Display interface {
	DebugFSMounted() bool
	Devices() ([]drm.Device, error)
	CardName(dev drm.Device) string
	Connected(card string) ([]string, error)
	FindEmptySlot(dev drm.Device, card string) (string, error)
	OverrideEDID(dev drm.Device, port string, data []byte) error
	SetStatus(ctx context.Context, card, port string, status drm.Status) error
}

// Recorder stores session history; *db.DB implements it
type Recorder interface {
	CreateEDID(rec *db.EDIDRecord) error
	CreateSession(sess *db.Session) error
	CloseSession(card, port string, at time.Time) (*db.Session, error)
}

// Options configures a Manager
type Options struct {
	// EDIDPath receives a copy of the EDID written to the connector
	EDIDPath  string
	StatePath string
	// DisplayName and HDR shape the generated EDID
	DisplayName string
	HDR         bool
}

// Manager runs the connect and disconnect sequences
type Manager struct {
	display Display
	store   Recorder
	opts    Options
	out     io.Writer
	now     func() time.Time
}

// hostInfo is replaced in tests
var hostInfo = host.Info

// NewManager creates a manager. store may be nil to skip history; progress
// is printed to out.
func NewManager(display Display, store Recorder, opts Options, out io.Writer) *Manager {
	if opts.DisplayName == "" {
		opts.DisplayName = edid.DefaultName
	}
	if out == nil {
		out = io.Discard
	}
	return &Manager{
		display: display,
		store:   store,
		opts:    opts,
		out:     out,
		now:     time.Now,
	}
}

// ConnectResult describes an established virtual display
type ConnectResult struct {
	Resolution edid.Resolution
	Device     drm.Device
	State      State
	EDIDPath   string
	SessionUID string
}

func (m *Manager) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}

// Connect generates an EDID for the requested mode, overrides a free
// connector with it and switches every other display off
func (m *Manager) Connect(ctx context.Context, width, height, refreshHz int) (*ConnectResult, error) {
	if width <= 0 || width > 0xFFFF || height <= 0 || height > 0xFFFF || refreshHz <= 0 || refreshHz > 0xFFFF {
		return nil, fmt.Errorf("invalid mode %dx%d@%d", width, height, refreshHz)
	}
	req := edid.Request{
		Width:     uint16(width),
		Height:    uint16(height),
		RefreshHz: uint16(refreshHz),
		HDR:       m.opts.HDR,
		Name:      m.opts.DisplayName,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m.printf("Connecting virtual display: %s\n", req)

	m.printf("\nStep 1: Generating custom EDID...\n")
	res := m.resolve(req)
	data := edid.Encode(res.Request)

	if err := os.MkdirAll(filepath.Dir(m.opts.EDIDPath), 0o755); err != nil {
		return nil, fmt.Errorf("create EDID dir: %w", err)
	}
	if err := os.WriteFile(m.opts.EDIDPath, data[:], 0o644); err != nil {
		return nil, fmt.Errorf("write EDID: %w", err)
	}
	m.printf("  ✓ Wrote %d-byte EDID to %s\n", len(data), m.opts.EDIDPath)
	m.printf("  ✓ Final mode: %s\n", res.Request)

	m.printf("\nStep 2: Scanning displays...\n")
	if !m.display.DebugFSMounted() {
		return nil, fmt.Errorf("%w: make sure debugfs is mounted", drm.ErrNoDebugFS)
	}
	devices, err := m.display.Devices()
	if err != nil {
		return nil, err
	}
	dev := devices[0]
	card := m.display.CardName(dev)
	m.printf("  Using device: %s (%s)\n", dev.Name, card)

	connected, err := m.display.Connected(card)
	if err != nil {
		return nil, err
	}
	m.printf("  Connected displays: %s\n", listOrNone(connected))

	m.printf("\nStep 3: Finding empty display slot...\n")
	port, err := m.display.FindEmptySlot(dev, card)
	if err != nil {
		return nil, err
	}
	m.printf("  ✓ Selected slot: %s\n", port)

	m.printf("\nStep 4: Overriding EDID for %s...\n", port)
	if err := m.display.OverrideEDID(dev, port, data[:]); err != nil {
		return nil, err
	}
	m.printf("  ✓ EDID override applied\n")

	m.printf("\nStep 5: Turning off connected displays...\n")
	for _, p := range connected {
		if err := m.display.SetStatus(ctx, card, p, drm.StatusOff); err != nil {
			log.Printf("Failed to turn off %s-%s: %v", card, p, err)
			m.printf("  Warning: could not turn off %s\n", p)
			continue
		}
		m.printf("  ✓ Turned off %s\n", p)
	}

	m.printf("\nStep 6: Turning on virtual display (%s)...\n", port)
	if err := m.display.SetStatus(ctx, card, port, drm.StatusOn); err != nil {
		return nil, err
	}
	m.printf("  ✓ Virtual display enabled on %s\n", port)

	state := State{Card: card, Port: port, Previous: connected}
	if err := SaveState(m.opts.StatePath, state); err != nil {
		return nil, err
	}

	result := &ConnectResult{
		Resolution: res,
		Device:     dev,
		State:      state,
		EDIDPath:   m.opts.EDIDPath,
	}
	result.SessionUID = m.record(res, data[:], dev, state)

	m.printf("\n✓ Virtual display successfully connected!\n")
	m.printf("  Port: %s\n", state.Connector())
	m.printf("  Resolution: %s\n", res.Request)
	return result, nil
}

// resolve reports the pixel clock check and applies the VIC fallback
func (m *Manager) resolve(req edid.Request) edid.Resolution {
	res := edid.Resolve(req)
	m.printf("  Requested: %s\n", req)
	m.printf("  Pixel clock: %.2f MHz (max: %.2f MHz)\n", res.OriginalMHz, res.LimitMHz)

	switch {
	case res.Fallback:
		m.printf("  ⚠ Pixel clock exceeds the EDID limit, using VIC %d: %s\n", res.VIC.Code, res.VIC.Name())
		m.printf("  → New pixel clock: %.2f MHz\n", res.ClockMHz)
	case !res.Feasible:
		m.printf("  ⚠ No suitable VIC found, encoding the requested mode anyway\n")
	default:
		m.printf("  ✓ Pixel clock within limits\n")
	}
	return res
}

// record stores the EDID and session. History is best effort: failures
// are logged and the display stays connected.
func (m *Manager) record(res edid.Resolution, data []byte, dev drm.Device, state State) string {
	if m.store == nil {
		return ""
	}

	rec := &db.EDIDRecord{
		Source:    db.SourceConnect,
		Width:     int(res.Request.Width),
		Height:    int(res.Request.Height),
		RefreshHz: int(res.Request.RefreshHz),
		HDR:       res.Request.HDR,
		Name:      res.Request.Name,
		Requested: res.Original.String(),
		Fallback:  res.Fallback,
		ClockMHz:  res.ClockMHz,
		Path:      m.opts.EDIDPath,
		Data:      data,
		CreatedAt: m.now(),
	}
	if res.Fallback {
		rec.VIC = int(res.VIC.Code)
	}
	if err := m.store.CreateEDID(rec); err != nil {
		log.Printf("Failed to record EDID: %v", err)
		return ""
	}

	sess := &db.Session{
		EDIDUID:     rec.UID,
		Device:      dev.Name,
		Card:        state.Card,
		Port:        state.Port,
		Previous:    state.Previous,
		Host:        hostFacts(),
		ConnectedAt: rec.CreatedAt,
	}
	if err := m.store.CreateSession(sess); err != nil {
		log.Printf("Failed to record session: %v", err)
		return ""
	}
	return sess.UID
}

func hostFacts() db.JSONData {
	info, err := hostInfo()
	if err != nil {
		log.Printf("Failed to read host info: %v", err)
		return nil
	}
	return db.JSONData{
		"hostname":        info.Hostname,
		"platform":        info.Platform,
		"platformVersion": info.PlatformVersion,
		"kernel":          info.KernelVersion,
		"arch":            info.KernelArch,
	}
}

// Disconnect turns the virtual display off, restores the displays it
// replaced and removes the state record
func (m *Manager) Disconnect(ctx context.Context) (State, error) {
	m.printf("Disconnecting virtual display...\n")

	state, err := LoadState(m.opts.StatePath)
	if err != nil {
		return State{}, err
	}
	m.printf("  Virtual display: %s\n", state.Connector())
	m.printf("  Previous displays: %s\n", listOrNone(state.Previous))

	m.printf("\nStep 1: Turning off virtual display (%s)...\n", state.Port)
	if err := m.display.SetStatus(ctx, state.Card, state.Port, drm.StatusOff); err != nil {
		log.Printf("Failed to turn off %s: %v", state.Connector(), err)
		m.printf("  Warning: could not turn off virtual display: %v\n", err)
	} else {
		m.printf("  ✓ Virtual display turned off\n")
	}

	m.printf("\nStep 2: Turning on previous displays...\n")
	for _, p := range state.Previous {
		if err := m.display.SetStatus(ctx, state.Card, p, drm.StatusOn); err != nil {
			log.Printf("Failed to turn on %s-%s: %v", state.Card, p, err)
			m.printf("  Warning: could not turn on %s\n", p)
			continue
		}
		m.printf("  ✓ Turned on %s\n", p)
	}

	if err := RemoveState(m.opts.StatePath); err != nil {
		return state, err
	}

	if m.store != nil {
		if _, err := m.store.CloseSession(state.Card, state.Port, m.now()); err != nil {
			log.Printf("Failed to close session history: %v", err)
		}
	}

	m.printf("\n✓ Virtual display disconnected!\n")
	return state, nil
}

// Current returns the active state record, if any
func (m *Manager) Current() (State, bool, error) {
	state, err := LoadState(m.opts.StatePath)
	if errors.Is(err, ErrNoState) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func listOrNone(ports []string) string {
	if len(ports) == 0 {
		return "None"
	}
	return fmt.Sprint(ports)
}
