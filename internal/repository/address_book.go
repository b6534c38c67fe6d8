package repository

import (
	"sort"
	"strings"
	"time"

	"AddressBook/internal/model"
	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/utils"
)

// AddressBook 内存中的通讯录，以姓名为键
//
// 不加锁：调用方保证同一时刻只有一个调用在执行。
type AddressBook struct {
	contacts map[string]*model.Contact

	allowDuplicatePhones bool
	defaultCountryCode   string
	now                  func() time.Time

	dirty        bool
	lastModified *time.Time
}

type Option func(*AddressBook)

// WithAllowDuplicatePhones 允许多个联系人使用同一号码
func WithAllowDuplicatePhones(allow bool) Option {
	return func(b *AddressBook) { b.allowDuplicatePhones = allow }
}

// WithDefaultCountryCode 本地号码（0 开头）补全时使用的国家码
func WithDefaultCountryCode(cc string) Option {
	return func(b *AddressBook) { b.defaultCountryCode = utils.NormalizeCountryCode(cc) }
}

func WithClock(now func() time.Time) Option {
	return func(b *AddressBook) { b.now = now }
}

func NewAddressBook(opts ...Option) *AddressBook {
	b := &AddressBook{
		contacts: make(map[string]*model.Contact),
		now:      utils.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load 批量载入持久化的记录，不标记 dirty
//
// 非法姓名/号码跳过；重名保留第一条；严格模式下号码重复也跳过。返回跳过的条数。
func (b *AddressBook) Load(contacts []model.Contact) int {
	skipped := 0
	for _, raw := range contacts {
		name, err := utils.ValidateName(raw.Name)
		if err != nil {
			skipped++
			continue
		}
		phone, err := utils.NormalizePhone(raw.Phone, b.defaultCountryCode)
		if err != nil {
			skipped++
			continue
		}
		if _, exists := b.contacts[name]; exists {
			skipped++
			continue
		}
		if !b.allowDuplicatePhones && b.hasPhone(phone, "") {
			skipped++
			continue
		}

		c := raw.Clone()
		c.Name = name
		c.Phone = phone
		if c.CreatedAt.IsZero() {
			c.CreatedAt = b.now()
		}
		if c.UpdatedAt.Before(c.CreatedAt) {
			c.UpdatedAt = c.CreatedAt
		}
		b.contacts[name] = &c
	}
	return skipped
}

// Add 新增联系人
func (b *AddressBook) Add(name, phone string, birthday, notes *string) (model.Contact, error) {
	cleanName, err := utils.ValidateName(name)
	if err != nil {
		return model.Contact{}, err
	}
	cleanPhone, err := utils.NormalizePhone(phone, b.defaultCountryCode)
	if err != nil {
		return model.Contact{}, err
	}
	bday, err := optionalBirthday(birthday)
	if err != nil {
		return model.Contact{}, err
	}

	if _, exists := b.contacts[cleanName]; exists {
		return model.Contact{}, pkgerrors.With(pkgerrors.DuplicateName, "%s", cleanName)
	}
	if !b.allowDuplicatePhones && b.hasPhone(cleanPhone, "") {
		return model.Contact{}, pkgerrors.With(pkgerrors.DuplicatePhone, "%s", cleanPhone)
	}

	now := b.now()
	c := &model.Contact{
		Name:      cleanName,
		Phone:     cleanPhone,
		CreatedAt: now,
		UpdatedAt: now,
		Birthday:  bday,
		Notes:     optionalText(notes),
	}
	b.contacts[cleanName] = c
	b.touch()

	return c.Clone(), nil
}

// Change 修改号码；birthday/notes 为 nil 时保持原值，空串表示清空
func (b *AddressBook) Change(name, phone string, birthday, notes *string) (model.Contact, error) {
	c, err := b.lookup(name)
	if err != nil {
		return model.Contact{}, err
	}
	cleanPhone, err := utils.NormalizePhone(phone, b.defaultCountryCode)
	if err != nil {
		return model.Contact{}, err
	}
	var bday *string
	if birthday != nil {
		if bday, err = optionalBirthday(birthday); err != nil {
			return model.Contact{}, err
		}
	}

	if !b.allowDuplicatePhones && b.hasPhone(cleanPhone, c.Name) {
		return model.Contact{}, pkgerrors.With(pkgerrors.DuplicatePhone, "%s", cleanPhone)
	}

	c.Phone = cleanPhone
	if birthday != nil {
		c.Birthday = bday
	}
	if notes != nil {
		c.Notes = optionalText(notes)
	}
	c.UpdatedAt = b.bump(c.CreatedAt)
	b.touch()

	return c.Clone(), nil
}

// Remove 删除联系人，返回被删除记录的快照
func (b *AddressBook) Remove(name string) (model.Contact, error) {
	c, err := b.lookup(name)
	if err != nil {
		return model.Contact{}, err
	}
	delete(b.contacts, c.Name)
	b.touch()
	return c.Clone(), nil
}

// Rename 把记录移到新名字下，保留号码、生日、备注和创建时间
func (b *AddressBook) Rename(oldName, newName string) (model.Contact, error) {
	c, err := b.lookup(oldName)
	if err != nil {
		return model.Contact{}, err
	}
	cleanNew, err := utils.ValidateName(newName)
	if err != nil {
		return model.Contact{}, err
	}
	if _, exists := b.contacts[cleanNew]; exists {
		return model.Contact{}, pkgerrors.With(pkgerrors.DuplicateName, "%s", cleanNew)
	}

	delete(b.contacts, c.Name)
	c.Name = cleanNew
	c.UpdatedAt = b.bump(c.CreatedAt)
	b.contacts[cleanNew] = c
	b.touch()

	return c.Clone(), nil
}

// Restore 按快照原样插入记录（保留时间戳），用于撤销删除
func (b *AddressBook) Restore(snapshot model.Contact) error {
	if _, exists := b.contacts[snapshot.Name]; exists {
		return pkgerrors.With(pkgerrors.DuplicateName, "%s", snapshot.Name)
	}
	if !b.allowDuplicatePhones && b.hasPhone(snapshot.Phone, "") {
		return pkgerrors.With(pkgerrors.DuplicatePhone, "%s", snapshot.Phone)
	}

	c := snapshot.Clone()
	b.contacts[c.Name] = &c
	b.touch()
	return nil
}

// Replace 用 next 替换 oldName 下的记录（名字可以不同），CreatedAt 沿用原记录，UpdatedAt 取 next 的值
func (b *AddressBook) Replace(oldName string, next model.Contact) error {
	cur, err := b.lookup(oldName)
	if err != nil {
		return err
	}
	if next.Name != cur.Name {
		if _, exists := b.contacts[next.Name]; exists {
			return pkgerrors.With(pkgerrors.DuplicateName, "%s", next.Name)
		}
	}
	if !b.allowDuplicatePhones && b.hasPhone(next.Phone, cur.Name) {
		return pkgerrors.With(pkgerrors.DuplicatePhone, "%s", next.Phone)
	}

	c := next.Clone()
	c.CreatedAt = cur.CreatedAt
	if c.UpdatedAt.Before(c.CreatedAt) {
		c.UpdatedAt = c.CreatedAt
	}
	delete(b.contacts, cur.Name)
	b.contacts[c.Name] = &c
	b.touch()
	return nil
}

// Get 返回联系人的号码
func (b *AddressBook) Get(name string) (string, error) {
	c, err := b.lookup(name)
	if err != nil {
		return "", err
	}
	return c.Phone, nil
}

// GetRecord 返回完整记录的副本
func (b *AddressBook) GetRecord(name string) (model.Contact, error) {
	c, err := b.lookup(name)
	if err != nil {
		return model.Contact{}, err
	}
	return c.Clone(), nil
}

// Has 判断姓名是否存在（精确匹配）
func (b *AddressBook) Has(name string) bool {
	_, ok := b.contacts[strings.TrimSpace(name)]
	return ok
}

// All 按姓名（忽略大小写）升序返回全部记录
func (b *AddressBook) All() []model.Contact {
	out := make([]model.Contact, 0, len(b.contacts))
	for _, c := range b.contacts {
		out = append(out, c.Clone())
	}
	sortByName(out)
	return out
}

// Search 姓名或号码包含 query（忽略大小写）的记录
func (b *AddressBook) Search(query string) ([]model.Contact, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, pkgerrors.InvalidQuery
	}

	out := make([]model.Contact, 0)
	for _, c := range b.contacts {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Phone), q) {
			out = append(out, c.Clone())
		}
	}
	sortByName(out)
	return out, nil
}

func (b *AddressBook) Stats() model.Stats {
	phones := make(map[string]struct{}, len(b.contacts))
	for _, c := range b.contacts {
		phones[c.Phone] = struct{}{}
	}

	var last *time.Time
	if b.lastModified != nil {
		t := *b.lastModified
		last = &t
	}

	return model.Stats{
		Total:                len(b.contacts),
		UniquePhones:         len(phones),
		LastModified:         last,
		AllowDuplicatePhones: b.allowDuplicatePhones,
	}
}

// Contacts 持久化用的快照（无序）
func (b *AddressBook) Contacts() []model.Contact {
	out := make([]model.Contact, 0, len(b.contacts))
	for _, c := range b.contacts {
		out = append(out, c.Clone())
	}
	return out
}

func (b *AddressBook) Len() int { return len(b.contacts) }

func (b *AddressBook) AllowDuplicatePhones() bool { return b.allowDuplicatePhones }

func (b *AddressBook) Dirty() bool { return b.dirty }

// MarkClean 持久化成功后调用
func (b *AddressBook) MarkClean() { b.dirty = false }

func (b *AddressBook) LastModified() *time.Time {
	if b.lastModified == nil {
		return nil
	}
	t := *b.lastModified
	return &t
}

// SetLastModified 载入时恢复文件里记录的修改时间
func (b *AddressBook) SetLastModified(t *time.Time) {
	if t == nil {
		b.lastModified = nil
		return
	}
	v := t.UTC()
	b.lastModified = &v
}

func (b *AddressBook) lookup(name string) (*model.Contact, error) {
	key := strings.TrimSpace(name)
	c, ok := b.contacts[key]
	if !ok {
		return nil, pkgerrors.With(pkgerrors.ContactNotFound, "%s", key)
	}
	return c, nil
}

func (b *AddressBook) hasPhone(phone, exceptName string) bool {
	for name, c := range b.contacts {
		if exceptName != "" && name == exceptName {
			continue
		}
		if c.Phone == phone {
			return true
		}
	}
	return false
}

func (b *AddressBook) touch() {
	now := b.now()
	b.dirty = true
	b.lastModified = &now
}

// bump 返回新的 UpdatedAt，不早于 CreatedAt
func (b *AddressBook) bump(createdAt time.Time) time.Time {
	now := b.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

func optionalBirthday(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	b, err := utils.ValidateBirthday(*raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func optionalText(raw *string) *string {
	if raw == nil {
		return nil
	}
	return model.StringPtr(strings.TrimSpace(*raw))
}

func sortByName(cs []model.Contact) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := strings.ToLower(cs[i].Name), strings.ToLower(cs[j].Name)
		if a != b {
			return a < b
		}
		return cs[i].Name < cs[j].Name
	})
}
