package redpacket_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/internal/redpacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqRand struct {
	values []uint32
	idx    int
}

func (r *seqRand) Uint32() uint32 {
	v := r.values[r.idx%len(r.values)]
	r.idx++
	return v
}

func TestPickerMapsRangeToGestures(t *testing.T) {
	cases := []struct {
		value uint32
		want  protocol.Gesture
	}{
		{0, protocol.GestureRock},
		{math.MaxUint32 / 3, protocol.GestureRock},
		{math.MaxUint32/3 + 1, protocol.GestureScissors},
		{math.MaxUint32 / 3 * 2, protocol.GestureScissors},
		{math.MaxUint32/3*2 + 2, protocol.GesturePaper},
		{math.MaxUint32, protocol.GesturePaper},
	}

	for _, tc := range cases {
		picker := redpacket.NewPicker(&seqRand{values: []uint32{tc.value}}, &redpacket.MemoryStats{})
		assert.Equal(t, tc.want, picker.Pick(), "value %d", tc.value)
	}
}

func TestPickerFairness(t *testing.T) {
	stats := &redpacket.MemoryStats{}
	picker := redpacket.NewPicker(nil, stats)

	const draws = 30000
	for i := 0; i < draws; i++ {
		g := picker.Pick()
		require.GreaterOrEqual(t, int(g), 0)
		require.LessOrEqual(t, int(g), 2)
	}

	counts := stats.Counts()
	for g, n := range counts {
		// 均匀分布下每种约 10000 次，给 20% 容差
		assert.InDelta(t, draws/3, n, draws/3*0.2, "gesture %d", g)
	}
	assert.Equal(t, draws, counts[0]+counts[1]+counts[2])
}

func TestPickerRecordsStats(t *testing.T) {
	stats := &redpacket.MemoryStats{}
	picker := redpacket.NewPicker(&seqRand{values: []uint32{0, 0, math.MaxUint32}}, stats)

	picker.Pick()
	picker.Pick()
	picker.Pick()

	counts := stats.Counts()
	assert.Equal(t, 2, counts[protocol.GestureRock])
	assert.Equal(t, 1, counts[protocol.GesturePaper])
}

func TestFileStatsPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gesture_stats.json")

	stats := redpacket.NewFileStats(path)
	stats.Record(protocol.GestureRock)
	stats.Record(protocol.GestureRock)
	stats.Record(protocol.GesturePaper)

	reloaded := redpacket.NewFileStats(path)
	counts := reloaded.Counts()
	assert.Equal(t, 2, counts["石头"])
	assert.Equal(t, 1, counts["布"])
}

func TestFileStatsCorruptedFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gesture_stats.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	stats := redpacket.NewFileStats(path)
	assert.Empty(t, stats.Counts())
}
