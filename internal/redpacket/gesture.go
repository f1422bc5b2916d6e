package redpacket

import (
	"encoding/json"
	"math/rand"
	"os"
	"sync"

	"github.com/fishpi/gofish/internal/protocol"
	"github.com/fishpi/gofish/pkg/logger"
	"go.uber.org/zap"
)

// RandSource 随机源，测试时可注入定值序列
type RandSource interface {
	Uint32() uint32
}

type mathRand struct{}

func (mathRand) Uint32() uint32 { return rand.Uint32() }

// StatsSink 记录出拳历史，供统计胜率使用
type StatsSink interface {
	Record(g protocol.Gesture)
}

// Picker 手势选择器，三种手势等概率
type Picker struct {
	src   RandSource
	stats StatsSink
}

// NewPicker 创建手势选择器，src 或 stats 为 nil 时使用默认实现
func NewPicker(src RandSource, stats StatsSink) *Picker {
	if src == nil {
		src = mathRand{}
	}
	if stats == nil {
		stats = &MemoryStats{}
	}
	return &Picker{src: src, stats: stats}
}

// Pick 均匀随机选一个手势并记入统计
//
// 把 32 位随机数映射到 [0,3)，三种取值概率相同。
func (p *Picker) Pick() protocol.Gesture {
	g := protocol.Gesture(uint64(p.src.Uint32()) * 3 >> 32)
	p.stats.Record(g)
	return g
}

// MemoryStats 内存中的出拳统计
type MemoryStats struct {
	mu     sync.Mutex
	counts [3]int
}

// Record 记一次出拳
func (s *MemoryStats) Record(g protocol.Gesture) {
	if g < 0 || g > 2 {
		return
	}
	s.mu.Lock()
	s.counts[g]++
	s.mu.Unlock()
}

// Counts 返回各手势的出拳次数，下标即手势编码
func (s *MemoryStats) Counts() [3]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// FileStats 落盘的出拳统计，每次记录后写回文件
type FileStats struct {
	mu     sync.Mutex
	path   string
	counts map[string]int
}

// NewFileStats 创建落盘统计，文件不存在时从零开始
func NewFileStats(path string) *FileStats {
	s := &FileStats{
		path:   path,
		counts: make(map[string]int),
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &s.counts); err != nil {
			logger.Warn("gesture stats file corrupted, starting fresh",
				zap.String("path", path), zap.Error(err))
			s.counts = make(map[string]int)
		}
	}
	return s
}

// Record 记一次出拳并写回文件
func (s *FileStats) Record(g protocol.Gesture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[g.String()]++

	data, err := json.MarshalIndent(s.counts, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		logger.Warn("write gesture stats failed", zap.String("path", s.path), zap.Error(err))
	}
}

// Counts 返回按手势名统计的出拳次数
func (s *FileStats) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}
