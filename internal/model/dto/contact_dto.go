package dto

import (
	"time"

	"AddressBook/internal/model"
)

// ========== Contact 相关 DTO ==========

// CreateContactRequest 新增联系人请求
type CreateContactRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Birthday *string `json:"birthday,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// UpdateContactRequest 修改联系人请求，Birthday/Notes 为 nil 表示不修改，空串表示清空
type UpdateContactRequest struct {
	Phone    string  `json:"phone"`
	Birthday *string `json:"birthday,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// RenameContactRequest 重命名请求
type RenameContactRequest struct {
	NewName string `json:"new_name"`
}

// ContactItem 对外返回的联系人
type ContactItem struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Birthday  *string   `json:"birthday"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BirthdayItem 即将到来的生日
type BirthdayItem struct {
	ContactItem
	DaysUntil int `json:"days_until"`
}

// NewContactItem 从 model 转换
func NewContactItem(c model.Contact) ContactItem {
	return ContactItem{
		Name:      c.Name,
		Phone:     c.Phone,
		Birthday:  c.Birthday,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewContactItems 批量转换
func NewContactItems(cs []model.Contact) []ContactItem {
	out := make([]ContactItem, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewContactItem(c))
	}
	return out
}
