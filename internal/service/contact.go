package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"AddressBook/internal/history"
	"AddressBook/internal/model"
	"AddressBook/internal/model/dto"
	"AddressBook/internal/repository"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/pkg/logger"
	"AddressBook/pkg/metrics"
	"AddressBook/utils"
)

// Persister 通讯录的持久化，jsonfile.Store 实现了它
type Persister interface {
	Save(contacts []model.Contact, lastModified *time.Time) error
}

// ContactService 对外唯一的入口：修改通讯录、记录撤销历史、写盘
//
// 不是并发安全的，调用方需要保证同一时刻只有一个调用。
type ContactService struct {
	book    *repository.AddressBook
	history *history.Log
	store   Persister

	log      *zap.Logger
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*ContactService)

func WithLogger(l *zap.Logger) Option {
	return func(s *ContactService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock 只影响生日计算；记录的时间戳由 AddressBook 的时钟决定
func WithClock(now func() time.Time) Option {
	return func(s *ContactService) { s.now = now }
}

func NewContactService(book *repository.AddressBook, store Persister, opts ...Option) *ContactService {
	s := &ContactService{
		book:     book,
		history:  history.NewLog(),
		store:    store,
		log:      logger.Logger,
		now:      utils.Now,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add 新增联系人
func (s *ContactService) Add(ctx context.Context, req dto.CreateContactRequest) (model.Contact, error) {
	c, err := s.book.Add(req.Name, req.Phone, req.Birthday, req.Notes)
	if err != nil {
		s.rejected(ctx, "add", err)
		return model.Contact{}, err
	}

	s.commit(ctx, history.AddedRecord{Name: c.Name})
	return c, nil
}

// Change 修改号码，可同时修改生日和备注
func (s *ContactService) Change(ctx context.Context, name string, req dto.UpdateContactRequest) (model.Contact, error) {
	before, err := s.book.GetRecord(name)
	if err != nil {
		s.rejected(ctx, "change", err)
		return model.Contact{}, err
	}

	c, err := s.book.Change(name, req.Phone, req.Birthday, req.Notes)
	if err != nil {
		s.rejected(ctx, "change", err)
		return model.Contact{}, err
	}

	s.commit(ctx, history.ChangedPhone{
		Name:      before.Name,
		Phone:     before.Phone,
		Birthday:  before.Birthday,
		Notes:     before.Notes,
		UpdatedAt: before.UpdatedAt,
	})
	return c, nil
}

// SetBirthday 只修改生日，号码保持不变
func (s *ContactService) SetBirthday(ctx context.Context, name, birthday string) (model.Contact, error) {
	b, err := utils.ValidateBirthday(birthday)
	if err != nil {
		return model.Contact{}, err
	}
	phone, err := s.book.Get(name)
	if err != nil {
		return model.Contact{}, err
	}
	return s.Change(ctx, name, dto.UpdateContactRequest{Phone: phone, Birthday: &b})
}

// SetNote 设置备注，空白备注等同于 ClearNote
func (s *ContactService) SetNote(ctx context.Context, name, note string) (model.Contact, error) {
	phone, err := s.book.Get(name)
	if err != nil {
		return model.Contact{}, err
	}
	return s.Change(ctx, name, dto.UpdateContactRequest{Phone: phone, Notes: &note})
}

func (s *ContactService) ClearNote(ctx context.Context, name string) (model.Contact, error) {
	return s.SetNote(ctx, name, "")
}

// Remove 删除联系人，返回被删除的记录
func (s *ContactService) Remove(ctx context.Context, name string) (model.Contact, error) {
	snap, err := s.book.Remove(name)
	if err != nil {
		s.rejected(ctx, "remove", err)
		return model.Contact{}, err
	}

	s.commit(ctx, history.RemovedRecord{Record: snap})
	return snap, nil
}

// Rename 改名，号码、生日、备注和创建时间保持不变
func (s *ContactService) Rename(ctx context.Context, oldName, newName string) (model.Contact, error) {
	before, err := s.book.GetRecord(oldName)
	if err != nil {
		s.rejected(ctx, "rename", err)
		return model.Contact{}, err
	}

	c, err := s.book.Rename(oldName, newName)
	if err != nil {
		s.rejected(ctx, "rename", err)
		return model.Contact{}, err
	}

	s.commit(ctx, history.Renamed{OldName: before.Name, NewName: c.Name, UpdatedAt: before.UpdatedAt})
	return c, nil
}

// Get 返回号码
func (s *ContactService) Get(_ context.Context, name string) (string, error) {
	return s.book.Get(name)
}

func (s *ContactService) GetRecord(_ context.Context, name string) (model.Contact, error) {
	return s.book.GetRecord(name)
}

func (s *ContactService) All(_ context.Context) []model.Contact {
	return s.book.All()
}

func (s *ContactService) Search(_ context.Context, query string) ([]model.Contact, error) {
	return s.book.Search(query)
}

func (s *ContactService) Stats(_ context.Context) model.Stats {
	return s.book.Stats()
}

func (s *ContactService) CanUndo() bool { return s.history.CanUndo() }

func (s *ContactService) CanRedo() bool { return s.history.CanRedo() }

// Close 退出前把未写盘的修改写出去
func (s *ContactService) Close(ctx context.Context) error {
	if !s.book.Dirty() {
		return nil
	}
	return s.save(ctx)
}

// commit 记录撤销项（清空重做栈）并写盘
func (s *ContactService) commit(ctx context.Context, entry history.Entry) {
	s.history.Record(entry)
	metrics.RecordMutation(ctx, entry.Op(), "success")
	s.persist(ctx)
}

func (s *ContactService) rejected(ctx context.Context, op string, err error) {
	metrics.RecordMutation(ctx, op, "failed")
	s.log.Debug("mutation rejected", zap.String("op", op), zap.String("kind", string(pkgerrors.KindOf(err))), zap.Error(err))
}

// persist 写盘失败只记日志：内存中的修改已经生效，不回滚
func (s *ContactService) persist(ctx context.Context) {
	if err := s.save(ctx); err != nil {
		s.log.Error("failed to save contacts", zap.Error(err))
	}
}

func (s *ContactService) save(ctx context.Context) error {
	start := time.Now()
	err := s.store.Save(s.book.Contacts(), s.book.LastModified())
	metrics.RecordSave(ctx, time.Since(start).Seconds(), err != nil)
	if err != nil {
		return err
	}
	s.book.MarkClean()
	return nil
}
