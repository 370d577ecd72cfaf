package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayaan2907/powerBiChat/internal/config"
	"github.com/Ayaan2907/powerBiChat/internal/core"
)

func sampleEntries() []core.AuditEntry {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []core.AuditEntry{
		{ID: "a", Time: base, Action: ActionConfigMint, Strategy: "direct", Success: true},
		{ID: "b", Time: base.Add(time.Second), Action: ActionExportSubmit, ExportID: "e1", Success: true},
		{ID: "c", Time: base.Add(2 * time.Second), Action: ActionConfigMint, Strategy: "legacy", FallbackUsed: true, Success: true},
		{ID: "d", Time: base.Add(3 * time.Second), Action: ActionExportStatus, Success: false, Kind: core.KindUpstream},
	}
}

func readers(t *testing.T) map[string]interface {
	core.Auditor
	core.AuditReader
} {
	file, err := NewFileAuditor(filepath.Join(t.TempDir(), "audit.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	return map[string]interface {
		core.Auditor
		core.AuditReader
	}{
		"memory": NewInMemoryAuditor(),
		"file":   file,
	}
}

func TestAuditors_RecentAndFind(t *testing.T) {
	for name, a := range readers(t) {
		t.Run(name, func(t *testing.T) {
			for _, e := range sampleEntries() {
				require.NoError(t, a.Log(e))
			}

			recent, err := a.GetRecent(2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, "c", recent[0].ID)
			assert.Equal(t, "d", recent[1].ID)

			all, err := a.GetRecent(100)
			require.NoError(t, err)
			assert.Len(t, all, 4)

			mints, err := a.Find(func(e core.AuditEntry) bool { return e.Action == ActionConfigMint }, 10)
			require.NoError(t, err)
			require.Len(t, mints, 2)
			assert.True(t, mints[1].FallbackUsed)

			last, err := a.Find(func(e core.AuditEntry) bool { return true }, 1)
			require.NoError(t, err)
			require.Len(t, last, 1)
			assert.Equal(t, core.KindUpstream, last[0].Kind)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AuditConfig
		want    any
		wantErr bool
	}{
		{name: "disabled", cfg: config.AuditConfig{}, want: NoopAuditor{}},
		{name: "memory", cfg: config.AuditConfig{Enabled: true, Type: "memory"}, want: &InMemoryAuditor{}},
		{name: "file", cfg: config.AuditConfig{Enabled: true, Type: "file", Path: filepath.Join(t.TempDir(), "a.jsonl")}, want: &FileAuditor{}},
		{name: "unknown", cfg: config.AuditConfig{Enabled: true, Type: "kafka"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, a)
			_ = a.Close()
		})
	}
}

func TestCreateUserAgent(t *testing.T) {
	ua := CreateUserAgent("cid-1", "direct")
	assert.Contains(t, ua, "correlation_id=cid-1")
	assert.Contains(t, ua, "strategy=direct")
}
