package savedata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCSV(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.csv")
	mycsv := &SaveCSV{}
	assert.Error(t, mycsv.AddOneToCSV([]string{"x"}), "rows before NewCSV")
	require.NoError(t, mycsv.NewCSV(name))
	require.NoError(t, mycsv.AddOneToCSV([]string{"protocol", "time"}))
	require.NoError(t, mycsv.AddOneToCSV([]string{"TcpBbr", "120.5"}))
	require.NoError(t, mycsv.CloseCSV())
	assert.Error(t, mycsv.CloseCSV(), "second close")

	b, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "protocol,time\nTcpBbr,120.5\n", string(b))
}

func TestGobCache(t *testing.T) {
	type entry struct {
		Key    string
		Values []float64
	}
	path := GobName(filepath.Join(t.TempDir(), "TcpCubic.csv"))
	assert.Equal(t, ".gob", filepath.Ext(path))
	require.NoError(t, SaveData(path, entry{Key: "k", Values: []float64{1, 2}}))
	var got entry
	require.NoError(t, LoadData(path, &got))
	assert.Equal(t, entry{Key: "k", Values: []float64{1, 2}}, got)

	assert.Error(t, LoadData(path+".missing", &got))
}

func TestSaveJSONReplacesExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cross.pdf")
	require.NoError(t, SaveJSON(out, ".summary.json", map[string]int{"flows": 6}))
	b, err := os.ReadFile(filepath.Join(filepath.Dir(out), "cross.summary.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"flows": 6}`, string(b))
}
