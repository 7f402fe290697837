package timing

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSortsAscendingWithTotal(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Record("cli", 2500*time.Millisecond)
	rec.Record("esm", 125*time.Millisecond)
	rec.Record("browser", 1200*time.Millisecond)

	var buf bytes.Buffer
	Report(&buf, rec, 2750*time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "0.125s esm", lines[0])
	assert.Equal(t, "1.200s browser", lines[1])
	assert.Equal(t, "2.500s cli", lines[2])
	assert.Equal(t, "2.750s total", lines[3])
}

func TestReportTieBrokenByName(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Record("zeta", time.Second)
	rec.Record("alpha", time.Second)

	var buf bytes.Buffer
	Report(&buf, rec, time.Second)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1.000s alpha", lines[0])
	assert.Equal(t, "1.000s zeta", lines[1])
}

func TestReportEmptyRunStillPrintsTotal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Report(&buf, NewRecorder(), 42*time.Millisecond)

	assert.Equal(t, "0.042s total\n", buf.String())
}
