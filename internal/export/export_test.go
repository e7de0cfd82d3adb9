package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTasksWorkbook(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	data, err := TasksWorkbook([]TaskRow{
		{Title: "Ship", Status: "Development", AssignedTo: "bob", Categories: []string{"api", "backend"}, CreatedBy: "alice", CreatedAt: created},
		{Title: "Test", Status: "Completed", AssignedTo: "carol", CreatedBy: "alice", CreatedAt: created},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, Header, rows[0])
	require.Equal(t, []string{"Ship", "Development", "bob", "api, backend", "alice", "2025-03-01T10:00:00Z"}, rows[1])
	require.Equal(t, "carol", rows[2][2])
}

func TestTasksWorkbook_Empty(t *testing.T) {
	data, err := TasksWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
