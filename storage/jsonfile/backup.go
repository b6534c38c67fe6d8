package jsonfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"AddressBook/pkg/metrics"
)

// BackupLayout 备份文件名中的时间戳格式（UTC）
const BackupLayout = "20060102T150405"

// backup 把 path 复制为 <name>.backup.<timestamp> 并清理旧备份
//
// 备份失败只记日志，不影响后续写入。
func (s *Store) backup(path string) {
	name, err := s.copyToBackup(path)
	if err != nil {
		s.log.Warn("backup failed", zap.String("path", path), zap.Error(err))
		metrics.RecordBackup("failed")
		return
	}
	metrics.RecordBackup("success")
	s.log.Debug("backup created", zap.String("backup", name))

	removed, err := rotateBackups(path, s.backupKeep)
	if err != nil {
		s.log.Warn("backup rotation failed", zap.String("path", path), zap.Error(err))
		return
	}
	for range removed {
		metrics.RecordBackup("rotated")
	}
}

func (s *Store) copyToBackup(path string) (string, error) {
	base := backupPrefix(path) + s.now().UTC().Format(BackupLayout)
	target := base
	// 同一秒内多次保存时加序号，避免覆盖
	for i := 1; ; i++ {
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			break
		}
		target = fmt.Sprintf("%s.%d", base, i)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return target, nil
}

// rotateBackups 只保留最新的 keep 个备份（按修改时间），返回被删除的文件
func rotateBackups(path string, keep int) ([]string, error) {
	backups, err := listBackups(path)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	var removed []string
	for _, b := range backups[keep:] {
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, b.path)
	}
	return removed, nil
}

type backupFile struct {
	path  string
	mtime int64
}

// listBackups 按修改时间从新到旧排列，时间相同按文件名倒序
func listBackups(path string) ([]backupFile, error) {
	prefix := backupPrefix(path)
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	var out []backupFile
	for _, e := range entries {
		full := filepath.Join(filepath.Dir(path), e.Name())
		if e.IsDir() || !strings.HasPrefix(full, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, backupFile{path: full, mtime: info.ModTime().UnixNano()})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].mtime != out[j].mtime {
			return out[i].mtime > out[j].mtime
		}
		return out[i].path > out[j].path
	})
	return out, nil
}

func backupPrefix(path string) string {
	return filepath.Join(filepath.Dir(path), filepath.Base(path)+".backup.")
}
