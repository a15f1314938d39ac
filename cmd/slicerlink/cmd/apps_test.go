package cmd

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicerlink/internal/catalog"
)

// mockProberInterface is a manual mock for testing. Probes run concurrently,
// so the recorded IDs are guarded.
type mockProberInterface struct {
	installedFunc func(ctx context.Context, app catalog.App) bool

	mu     sync.Mutex
	probed []string
}

func (m *mockProberInterface) Installed(ctx context.Context, app catalog.App) bool {
	m.mu.Lock()
	m.probed = append(m.probed, app.ID)
	m.mu.Unlock()

	if m.installedFunc != nil {
		return m.installedFunc(ctx, app)
	}
	return false
}

func (m *mockProberInterface) probedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.probed))
	copy(ids, m.probed)
	sort.Strings(ids)
	return ids
}

func tableRows(t *testing.T, m *mockOutputInterface) [][]string {
	t.Helper()
	for _, c := range m.calls {
		if c.method == "Table" {
			rows, ok := c.args[1].([][]string)
			require.True(t, ok)
			return rows
		}
	}
	t.Fatal("expected a Table call")
	return nil
}

func TestAppsService_DisplayApps(t *testing.T) {
	tests := []struct {
		name      string
		installed func(ctx context.Context, app catalog.App) bool
		lastUsed  *mockLastUsed
		verify    func(*testing.T, *mockProberInterface, *mockOutputInterface)
	}{
		{
			name: "lists every application with its probe result",
			installed: func(_ context.Context, app catalog.App) bool {
				return app.ID == "cura"
			},
			verify: func(t *testing.T, prober *mockProberInterface, out *mockOutputInterface) {
				cat, err := catalog.LoadBuiltin()
				require.NoError(t, err)

				rows := tableRows(t, out)
				require.Len(t, rows, len(cat.Apps()))

				byID := make(map[string][]string, len(rows))
				for _, row := range rows {
					byID[row[0]] = row
				}
				require.Contains(t, byID, "cura")
				assert.Equal(t, "yes", byID["cura"][4])
				require.Contains(t, byID, "prusaslicer")
				assert.Equal(t, "no", byID["prusaslicer"][4])
				assert.Contains(t, byID["prusaslicer"][3], "amf")

				assert.Equal(t, cat.IDs(), prober.probedIDs(), "every application should be probed")
			},
		},
		{
			name:     "marks the last used application",
			lastUsed: &mockLastUsed{app: "prusaslicer", ok: true},
			verify: func(t *testing.T, _ *mockProberInterface, out *mockOutputInterface) {
				rows := tableRows(t, out)
				var marked string
				for _, row := range rows {
					if row[0] == "prusaslicer" {
						marked = row[1]
					}
				}
				assert.Equal(t, "PrusaSlicer (last used)", marked)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := catalog.LoadBuiltin()
			require.NoError(t, err)

			prober := &mockProberInterface{installedFunc: tt.installed}
			lastUsed := tt.lastUsed
			if lastUsed == nil {
				lastUsed = &mockLastUsed{}
			}

			mockOutput := &mockOutputInterface{}
			service := NewAppsService(cat, prober, lastUsed, mockOutput)

			require.NoError(t, service.DisplayApps(context.Background()))
			tt.verify(t, prober, mockOutput)
		})
	}
}

func TestAppsService_DisplayAppsEmptyCatalog(t *testing.T) {
	prober := &mockProberInterface{}
	mockOutput := &mockOutputInterface{}
	service := NewAppsService(&catalog.Catalog{}, prober, &mockLastUsed{}, mockOutput)

	require.NoError(t, service.DisplayApps(context.Background()))

	assert.True(t, mockOutput.hasCall("Warningf"), "expected the empty-catalog warning")
	assert.False(t, mockOutput.hasCall("Table"))
	assert.Empty(t, prober.probedIDs())
}
