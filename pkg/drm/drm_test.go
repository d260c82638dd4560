package drm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPCI = "0000:03:00.0"

type fakeTree struct {
	debug string
	class string
}

// newFakeTree lays out a device with two DP and one HDMI port, where
// DP-1 is connected to card1.
func newFakeTree(t *testing.T) fakeTree {
	t.Helper()
	root := t.TempDir()
	tree := fakeTree{
		debug: filepath.Join(root, "dri"),
		class: filepath.Join(root, "drm"),
	}

	for _, port := range []string{"DP-1", "DP-2", "HDMI-A-1", "eDP-1"} {
		dir := filepath.Join(tree.debug, testPCI, port)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "edid_override"), nil, 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(tree.debug, "0"), 0o755))

	require.NoError(t, os.MkdirAll(filepath.Join(tree.class, "card1"), 0o755))
	require.NoError(t, os.Symlink(
		"../../devices/pci0000:00/0000:00:03.1/"+testPCI,
		filepath.Join(tree.class, "card1", "device"),
	))
	tree.setStatus(t, "card1", "DP-1", "connected")
	tree.setStatus(t, "card1", "DP-2", "disconnected")
	tree.setStatus(t, "card1", "HDMI-A-1", "disconnected")
	return tree
}

func (f fakeTree) setStatus(t *testing.T, card, port, status string) {
	t.Helper()
	dir := filepath.Join(f.class, card+"-"+port)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status+"\n"), 0o644))
}

func (f fakeTree) manager() *Manager {
	return New(Config{
		DebugRoot:  f.debug,
		ClassRoot:  f.class,
		RetryDelay: time.Millisecond,
	})
}

func TestNewDefaults(t *testing.T) {
	m := New(Config{})
	assert.Equal(t, DefaultConfig(), m.Config())

	m = New(Config{ClassRoot: "/tmp/drm", Retries: 5})
	assert.Equal(t, "/tmp/drm", m.Config().ClassRoot)
	assert.Equal(t, 5, m.Config().Retries)
	assert.Equal(t, DefaultDebugRoot, m.Config().DebugRoot)
}

func TestDevices(t *testing.T) {
	tree := newFakeTree(t)
	devices, err := tree.manager().Devices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, testPCI, devices[0].Name)
	assert.Equal(t, filepath.Join(tree.debug, testPCI), devices[0].Path)
}

func TestDevicesErrors(t *testing.T) {
	m := New(Config{DebugRoot: filepath.Join(t.TempDir(), "missing")})
	_, err := m.Devices()
	assert.Error(t, err)

	empty := t.TempDir()
	m = New(Config{DebugRoot: empty})
	_, err = m.Devices()
	assert.True(t, errors.Is(err, ErrNoDevices))
}

func TestPorts(t *testing.T) {
	tree := newFakeTree(t)
	m := tree.manager()
	devices, err := m.Devices()
	require.NoError(t, err)

	ports, err := m.Ports(devices[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"DP-1", "DP-2"}, ports.DP)
	assert.Equal(t, []string{"HDMI-A-1"}, ports.HDMI)
}

func TestConnected(t *testing.T) {
	tree := newFakeTree(t)
	tree.setStatus(t, "card0", "DP-3", "connected")

	connected, err := tree.manager().Connected("card1")
	require.NoError(t, err)
	assert.Equal(t, []string{"DP-1"}, connected)

	connected, err = tree.manager().Connected("card2")
	require.NoError(t, err)
	assert.Empty(t, connected)
}

func TestCardName(t *testing.T) {
	tree := newFakeTree(t)
	m := tree.manager()

	assert.Equal(t, "card1", m.CardName(Device{Name: testPCI}))
	assert.Equal(t, DefaultFallbackCard, m.CardName(Device{Name: "0000:09:00.0"}))

	m = New(Config{ClassRoot: tree.class, FallbackCard: "card7"})
	assert.Equal(t, "card7", m.CardName(Device{Name: "0000:09:00.0"}))
}

func TestFindEmptySlot(t *testing.T) {
	tree := newFakeTree(t)
	m := tree.manager()
	dev := Device{Name: testPCI, Path: filepath.Join(tree.debug, testPCI)}

	port, err := m.FindEmptySlot(dev, "card1")
	require.NoError(t, err)
	assert.Equal(t, "DP-2", port)

	// DisplayPort exhausted, HDMI next
	tree.setStatus(t, "card1", "DP-2", "connected")
	port, err = m.FindEmptySlot(dev, "card1")
	require.NoError(t, err)
	assert.Equal(t, "HDMI-A-1", port)

	tree.setStatus(t, "card1", "HDMI-A-1", "connected")
	_, err = m.FindEmptySlot(dev, "card1")
	assert.True(t, errors.Is(err, ErrNoEmptySlot))
}

func TestOverrideEDID(t *testing.T) {
	tree := newFakeTree(t)
	m := tree.manager()
	dev := Device{Name: testPCI, Path: filepath.Join(tree.debug, testPCI)}

	data := []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	require.NoError(t, m.OverrideEDID(dev, "DP-2", data))

	got, err := os.ReadFile(filepath.Join(dev.Path, "DP-2", "edid_override"))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	assert.Error(t, m.OverrideEDID(dev, "DP-9", data))
}

func TestSetStatus(t *testing.T) {
	tree := newFakeTree(t)
	m := tree.manager()
	ctx := context.Background()

	require.NoError(t, m.SetStatus(ctx, "card1", "DP-2", StatusOn))
	got, err := os.ReadFile(m.StatusPath("card1", "DP-2"))
	require.NoError(t, err)
	assert.Equal(t, "on\n", string(got))

	require.NoError(t, m.SetStatus(ctx, "card1", "DP-2", StatusOff))
	got, err = os.ReadFile(m.StatusPath("card1", "DP-2"))
	require.NoError(t, err)
	assert.Equal(t, "off\n", string(got))
}

func TestSetStatusRetries(t *testing.T) {
	tree := newFakeTree(t)
	m := tree.manager()

	start := time.Now()
	err := m.SetStatus(context.Background(), "card1", "DP-9", StatusOn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.True(t, errors.Is(err, os.ErrNotExist))
	// 1ms + 2ms of back-off between the three attempts
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Millisecond)
}

func TestSetStatusCancelled(t *testing.T) {
	tree := newFakeTree(t)
	m := New(Config{DebugRoot: tree.debug, ClassRoot: tree.class, RetryDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.SetStatus(ctx, "card1", "DP-9", StatusOn)
	assert.True(t, errors.Is(err, context.Canceled))
}
