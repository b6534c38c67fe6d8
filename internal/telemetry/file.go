package telemetry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const fileName = "telemetry.json"

// FileRecorder 在 JSON 文件里维护 {command: count}
type FileRecorder struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

func NewFileRecorder(dataDir string, log *zap.Logger) *FileRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileRecorder{path: filepath.Join(dataDir, fileName), log: log}
}

func (r *FileRecorder) Record(_ context.Context, command string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := r.read()
	counts[command]++

	if err := r.write(counts); err != nil {
		r.log.Debug("telemetry write failed", zap.String("path", r.path), zap.Error(err))
	}
}

// Counts 当前计数，文件不存在或损坏时为空
func (r *FileRecorder) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *FileRecorder) read() map[string]int {
	counts := make(map[string]int)
	data, err := os.ReadFile(r.path)
	if err != nil {
		return counts
	}
	if err := json.Unmarshal(data, &counts); err != nil {
		return make(map[string]int)
	}
	return counts
}

func (r *FileRecorder) write(counts map[string]int) error {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
