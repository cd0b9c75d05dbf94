package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-stabilizer/internal/domain/plate"
	"plate-stabilizer/internal/validation"
)

// "Chatto 13", characters out of order as a detector reports them.
const chattoFrame = `{"regions": [{"chars": [{"class_id": 3, "center_x": 70}, {"class_id": 44, "center_x": 20}, {"class_id": 1, "center_x": 60}]}]}`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestReplayExportsStablePlates(t *testing.T) {
	t.Setenv("PLATES_FILTER_PATTERN_TYPE", "district_simple")
	t.Setenv("PLATES_LOG_LEVEL", "disabled")

	dir := t.TempDir()
	input := filepath.Join(dir, "frames.jsonl")
	output := filepath.Join(dir, "plates.json")
	lines := strings.Repeat(chattoFrame+"\n", 8)
	require.NoError(t, os.WriteFile(input, []byte(lines), 0o600))

	execute(t, "replay", "--input", input, "--out", output)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var payload plate.ExportPayload
	require.NoError(t, json.Unmarshal(raw, &payload))

	require.Len(t, payload.Detections, 1)
	assert.Equal(t, "Chatto 13", payload.Detections[0].Text)
	assert.Equal(t, plate.PatternDistrictSimple, payload.Detections[0].PatternUsed)
	assert.Equal(t, plate.PatternDistrictSimple, payload.FilterSettings.ActivePattern)
}

func TestCheckReportsEveryPattern(t *testing.T) {
	t.Setenv("PLATES_LOG_LEVEL", "disabled")

	out := execute(t, "check", "DhakaMetro 115636", "--pattern", "metro_basic")

	var report validation.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, plate.PatternMetroBasic, report.Filter.ActivePattern)
	require.Len(t, report.Patterns, 4)
	assert.False(t, report.Patterns[0].Matched)
	assert.True(t, report.Patterns[1].Matched)
}
