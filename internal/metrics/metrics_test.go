package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/webui-janitor/internal/cleanup"
)

// textfile writes m to a temporary directory and returns the exposition.
func textfile(t *testing.T, m *PrometheusMetrics, job string) string {
	t.Helper()
	path, err := m.WriteTextfile(t.TempDir(), job)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestObserve(t *testing.T) {
	m := InitPrometheusMetrics(Namespace)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	m.Observe(cleanup.Stats{
		Job:           cleanup.JobOrphans,
		DryRun:        true,
		OrphanUploads: 3,
		FilesDeleted:  2,
		FilesMissing:  1,
		FilesKept:     2,
		BytesFreed:    2048,
		Errors:        1,
		Duration:      1500 * time.Millisecond,
	}, nil, now)

	content := textfile(t, m, cleanup.JobOrphans)
	for _, line := range []string{
		`webui_janitor_last_run_timestamp_seconds{job="orphans",mode="test"} 1.7922384e+09`,
		`webui_janitor_last_run_success{job="orphans",mode="test"} 1`,
		`webui_janitor_last_run_duration_seconds{job="orphans",mode="test"} 1.5`,
		`webui_janitor_last_run_bytes_freed{job="orphans",mode="test"} 2048`,
		`webui_janitor_last_run_item_errors{job="orphans",mode="test"} 1`,
		`webui_janitor_last_run_items{job="orphans",kind="orphan_uploads",mode="test"} 3`,
		`webui_janitor_last_run_items{job="orphans",kind="files_deleted",mode="test"} 2`,
		`webui_janitor_last_run_items{job="orphans",kind="files_kept",mode="test"} 2`,
	} {
		assert.Contains(t, content, line)
	}
}

func TestObserve_Failure(t *testing.T) {
	m := InitPrometheusMetrics(Namespace)

	m.Observe(cleanup.Stats{Job: cleanup.JobChats}, errors.New("boom"), time.Now())

	assert.Contains(t, textfile(t, m, cleanup.JobChats),
		`webui_janitor_last_run_success{job="chats",mode="live"} 0`)
}

func TestWriteTextfile(t *testing.T) {
	m := InitPrometheusMetrics(Namespace)
	m.Observe(cleanup.Stats{Job: cleanup.JobChats, ChatsDeleted: 4}, nil, time.Now())

	dir := filepath.Join(t.TempDir(), "textfile")
	path, err := m.WriteTextfile(dir, cleanup.JobChats)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "webui_janitor_chats.prom"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `webui_janitor_last_run_success{job="chats",mode="live"} 1`)
	assert.Contains(t, content, `webui_janitor_last_run_items{job="chats",kind="chats_deleted",mode="live"} 4`)
}

func TestTextfilePath(t *testing.T) {
	assert.Equal(t, "/var/lib/node_exporter/webui_janitor_orphans.prom",
		TextfilePath("/var/lib/node_exporter", cleanup.JobOrphans))
}
