package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wg-hub/pkg/model"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "data", "hub-audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndList(t *testing.T) {
	l := testLog(t)

	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	l.Record(model.AuditEntry{Actor: "10.8.0.5:51234", Action: "peer.add", Target: "tablet", Detail: "10.8.0.8", Timestamp: base})
	l.Record(model.AuditEntry{Actor: "10.8.0.5:51234", Action: "peer.del", Target: "tablet", Timestamp: base.Add(time.Minute)})

	entries, err := l.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, "peer.del", entries[0].Action)
	require.Equal(t, "peer.add", entries[1].Action)
	require.Equal(t, "tablet", entries[1].Target)
	require.Equal(t, "10.8.0.8", entries[1].Detail)
	require.Equal(t, base.Unix(), entries[1].Timestamp.Unix())
}

func TestListLimit(t *testing.T) {
	l := testLog(t)

	for i := 0; i < 5; i++ {
		l.Record(model.AuditEntry{Action: "peer.add", Target: "device"})
	}

	entries, err := l.List(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestRecordFillsTimestamp(t *testing.T) {
	l := testLog(t)

	l.Record(model.AuditEntry{Action: "peer.provision", Target: "laptop"})

	entries, err := l.List(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].Timestamp.IsZero())
}

func TestNilLogIsNoop(t *testing.T) {
	var l *Log

	l.Record(model.AuditEntry{Action: "peer.add"})
	entries, err := l.List(10)
	require.NoError(t, err)
	require.Nil(t, entries)
	require.NoError(t, l.Close())
}
