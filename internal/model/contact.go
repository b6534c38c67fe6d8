package model

import "time"

// Contact 通讯录中的一条记录，Name 即主键
type Contact struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Birthday  *string   `json:"birthday"` // YYYY-MM-DD，可为空
	Notes     *string   `json:"notes"`
}

// Clone 深拷贝，调用方拿到的副本不会影响存储中的状态
func (c Contact) Clone() Contact {
	out := c
	if c.Birthday != nil {
		b := *c.Birthday
		out.Birthday = &b
	}
	if c.Notes != nil {
		n := *c.Notes
		out.Notes = &n
	}
	return out
}

// BirthdayValue 返回生日字符串，未设置时为空串
func (c Contact) BirthdayValue() string {
	if c.Birthday == nil {
		return ""
	}
	return *c.Birthday
}

// NotesValue 返回备注，未设置时为空串
func (c Contact) NotesValue() string {
	if c.Notes == nil {
		return ""
	}
	return *c.Notes
}

// Stats 通讯录统计信息
type Stats struct {
	Total                int        `json:"contacts_count"`
	UniquePhones         int        `json:"unique_phones_count"`
	LastModified         *time.Time `json:"last_modified"`
	AllowDuplicatePhones bool       `json:"allow_duplicate_phones"`
}

// StringPtr 空串返回 nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
