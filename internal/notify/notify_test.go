package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedUpdate struct {
	handle   Handle
	content  string
	terminal TerminalKind
}

type mockSurface struct {
	created   []string
	updates   []recordedUpdate
	nextID    int
	createErr error
	updateErr error
}

func (m *mockSurface) Create(content string) (Handle, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.nextID++
	m.created = append(m.created, content)
	return Handle(string(rune('a' + m.nextID - 1))), nil
}

func (m *mockSurface) Update(handle Handle, content string, terminal TerminalKind) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, recordedUpdate{handle: handle, content: content, terminal: terminal})
	return nil
}

func TestBridgeSingleHandlePerAttempt(t *testing.T) {
	t.Parallel()

	surface := &mockSurface{}
	bridge := NewBridge(surface, nil)

	bridge.Report(1, "awaiting signature", TerminalNone)
	bridge.Report(1, "pending", TerminalNone)
	bridge.Report(1, "confirmed", TerminalSuccess)

	require.Len(t, surface.created, 1, "one attempt gets one notification")
	require.Len(t, surface.updates, 2)
	assert.Equal(t, surface.updates[0].handle, surface.updates[1].handle)
	assert.Equal(t, TerminalNone, surface.updates[0].terminal)
	assert.Equal(t, TerminalSuccess, surface.updates[1].terminal)
}

func TestBridgeNewAttemptGetsFreshHandle(t *testing.T) {
	t.Parallel()

	surface := &mockSurface{}
	bridge := NewBridge(surface, nil)

	bridge.Report(1, "pending", TerminalNone)
	bridge.Clear(1)
	bridge.Report(2, "awaiting signature", TerminalNone)
	bridge.Report(2, "pending", TerminalNone)

	require.Len(t, surface.created, 2)
	require.Len(t, surface.updates, 1)
	assert.Equal(t, Handle("b"), surface.updates[0].handle, "update targets the second attempt's handle")
}

func TestBridgeSupersededAttemptIsOrphaned(t *testing.T) {
	t.Parallel()

	surface := &mockSurface{}
	bridge := NewBridge(surface, nil)

	bridge.Report(1, "pending", TerminalNone)
	// A new attempt takes over without an explicit clear.
	bridge.Report(2, "awaiting signature", TerminalNone)
	bridge.Report(2, "confirmed", TerminalSuccess)

	require.Len(t, surface.created, 2)
	for _, u := range surface.updates {
		assert.NotEqual(t, Handle("a"), u.handle, "the orphaned handle is never touched again")
	}
	assert.False(t, bridge.Bound(1))
	assert.True(t, bridge.Bound(2))
}

func TestBridgeClearOnlyOwnAttempt(t *testing.T) {
	t.Parallel()

	surface := &mockSurface{}
	bridge := NewBridge(surface, nil)

	bridge.Report(2, "pending", TerminalNone)
	bridge.Clear(1) // stale clear from a previous attempt
	assert.True(t, bridge.Bound(2))

	bridge.Clear(2)
	assert.False(t, bridge.Bound(2))
}

func TestBridgeSurfaceFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	surface := &mockSurface{createErr: errors.New("surface down")}
	bridge := NewBridge(surface, nil)

	assert.NotPanics(t, func() {
		bridge.Report(1, "pending", TerminalNone)
	})
	assert.False(t, bridge.Bound(1))

	surface.createErr = nil
	surface.updateErr = errors.New("surface down")
	bridge.Report(1, "pending", TerminalNone)
	assert.NotPanics(t, func() {
		bridge.Report(1, "confirmed", TerminalSuccess)
	})
	assert.True(t, bridge.Bound(1))
}
