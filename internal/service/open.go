package service

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"AddressBook/config"
	"AddressBook/internal/repository"
	"AddressBook/pkg/logger"
	"AddressBook/storage/jsonfile"
)

// OpenOptions 打开磁盘上通讯录所需的参数
type OpenOptions struct {
	DataDir              string
	ContactsFile         string
	LegacyFile           string // 为空时不做迁移
	AllowDuplicatePhones bool
	EnableBackups        bool
	BackupKeep           int
	DefaultCountryCode   string

	Logger *zap.Logger
	Clock  func() time.Time
}

// OptionsFromConfig 命令入口用它把全局配置转换成 OpenOptions
func OptionsFromConfig(cfg config.Config) OpenOptions {
	return OpenOptions{
		DataDir:              cfg.DataDir,
		ContactsFile:         cfg.ContactsFile,
		LegacyFile:           cfg.LegacyFile,
		AllowDuplicatePhones: cfg.AllowDuplicatePhones,
		EnableBackups:        cfg.EnableBackups,
		BackupKeep:           cfg.BackupKeep,
		DefaultCountryCode:   cfg.DefaultCountryCode,
	}
}

// Open 从 DataDir 载入通讯录（必要时先迁移旧版文本文件）并创建服务
func Open(opts OpenOptions) (*ContactService, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Logger
	}
	if opts.ContactsFile == "" {
		opts.ContactsFile = "contacts.json"
	}

	storeOpts := []jsonfile.Option{
		jsonfile.WithBackups(opts.EnableBackups),
		jsonfile.WithBackupKeep(opts.BackupKeep),
		jsonfile.WithDefaultCountryCode(opts.DefaultCountryCode),
		jsonfile.WithLogger(log),
	}
	bookOpts := []repository.Option{
		repository.WithAllowDuplicatePhones(opts.AllowDuplicatePhones),
		repository.WithDefaultCountryCode(opts.DefaultCountryCode),
	}
	svcOpts := []Option{WithLogger(log)}
	if opts.LegacyFile != "" {
		storeOpts = append(storeOpts, jsonfile.WithLegacyPath(filepath.Join(opts.DataDir, opts.LegacyFile)))
	}
	if opts.Clock != nil {
		storeOpts = append(storeOpts, jsonfile.WithClock(opts.Clock))
		bookOpts = append(bookOpts, repository.WithClock(opts.Clock))
		svcOpts = append(svcOpts, WithClock(opts.Clock))
	}

	store := jsonfile.New(filepath.Join(opts.DataDir, opts.ContactsFile), storeOpts...)
	if _, err := store.MigrateLegacy(); err != nil {
		return nil, err
	}

	contacts, lastModified, err := store.Load()
	if err != nil {
		return nil, err
	}

	book := repository.NewAddressBook(bookOpts...)
	if skipped := book.Load(contacts); skipped > 0 {
		log.Warn("skipped invalid or duplicate contacts while loading",
			zap.String("path", store.Path()), zap.Int("skipped", skipped))
	}
	book.SetLastModified(lastModified)

	log.Info("address book loaded",
		zap.String("path", store.Path()),
		zap.Int("contacts", book.Len()),
		zap.Bool("allow_duplicate_phones", opts.AllowDuplicatePhones),
	)
	return NewContactService(book, store, svcOpts...), nil
}
