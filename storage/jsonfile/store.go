package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"AddressBook/internal/model"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/pkg/logger"
	"AddressBook/utils"
)

const defaultBackupKeep = 5

// Store 通讯录的 JSON 文件存储
//
// 写入走临时文件 + rename，读者不会看到写了一半的文件。
type Store struct {
	path       string
	legacyPath string

	backups    bool
	backupKeep int

	defaultCountryCode string

	now func() time.Time
	log *zap.Logger
}

type Option func(*Store)

// WithLegacyPath 旧版纯文本通讯录的位置，用于一次性迁移
func WithLegacyPath(path string) Option {
	return func(s *Store) { s.legacyPath = path }
}

// WithBackups 覆盖已有文件前是否先做备份
func WithBackups(enabled bool) Option {
	return func(s *Store) { s.backups = enabled }
}

// WithBackupKeep 保留的备份数量，<= 0 时使用默认值 5
func WithBackupKeep(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.backupKeep = n
		}
	}
}

// WithDefaultCountryCode 迁移旧文件时用于补全本地号码
func WithDefaultCountryCode(cc string) Option {
	return func(s *Store) { s.defaultCountryCode = cc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func New(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		backups:    true,
		backupKeep: defaultBackupKeep,
		now:        utils.Now,
		log:        logger.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Load 读取通讯录
//
// 文件不存在时返回空集合；内容无法识别时同样返回空集合并记一条警告；
// 只有读文件本身失败才返回 StorageIO 错误。
func (s *Store) Load() ([]model.Contact, *time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Contact{}, nil, nil
		}
		return nil, nil, pkgerrors.Storage("read", s.path, err)
	}

	contacts, lastModified, ok := decode(data, s.now())
	if !ok {
		s.log.Warn("contacts file is not a recognised shape, starting empty", zap.String("path", s.path))
		return []model.Contact{}, nil, nil
	}
	return contacts, lastModified, nil
}

// Save 以 {contacts, meta} 格式原子写入
func (s *Store) Save(contacts []model.Contact, lastModified *time.Time) error {
	data, err := encode(contacts, lastModified)
	if err != nil {
		return pkgerrors.Storage("encode", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return pkgerrors.Storage("mkdir", filepath.Dir(s.path), err)
	}

	if s.backups {
		if _, err := os.Stat(s.path); err == nil {
			s.backup(s.path)
		}
	}

	return writeAtomic(s.path, data)
}

// writeAtomic 先写同目录下的临时文件，fsync 后 rename 到目标路径
func writeAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return pkgerrors.Storage("create temp", path, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return pkgerrors.Storage("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return pkgerrors.Storage("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return pkgerrors.Storage("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return pkgerrors.Storage("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return pkgerrors.Storage("rename", path, err)
	}
	return nil
}

// fileRecord 磁盘上的单条记录，时间用字符串保存
type fileRecord struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	Birthday  *string `json:"birthday"`
	Notes     *string `json:"notes"`
}

type fileMeta struct {
	LastModified *string `json:"last_modified"`
}

type fileDocument struct {
	Contacts map[string]fileRecord `json:"contacts"`
	Meta     fileMeta              `json:"meta"`
}

func encode(contacts []model.Contact, lastModified *time.Time) ([]byte, error) {
	doc := fileDocument{Contacts: make(map[string]fileRecord, len(contacts))}
	for _, c := range contacts {
		doc.Contacts[c.Name] = fileRecord{
			Name:      c.Name,
			Phone:     c.Phone,
			CreatedAt: c.CreatedAt.UTC().Format(utils.TimestampLayout),
			UpdatedAt: c.UpdatedAt.UTC().Format(utils.TimestampLayout),
			Birthday:  c.Birthday,
			Notes:     c.Notes,
		}
	}
	if lastModified != nil {
		s := lastModified.UTC().Format(utils.TimestampLayout)
		doc.Meta.LastModified = &s
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortContacts(cs []model.Contact) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
}
