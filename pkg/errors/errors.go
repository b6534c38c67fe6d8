package errors

import (
	stderrors "errors"
	"fmt"
)

func (d Definition) Error() string {
	return d.Message
}

// Kind 错误类别，前端按类别选择提示文案
type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindDuplicateName  Kind = "DUPLICATE_NAME"
	KindDuplicatePhone Kind = "DUPLICATE_PHONE"
	KindNotFound       Kind = "CONTACT_NOT_FOUND"
	KindNothingToUndo  Kind = "NOTHING_TO_UNDO"
	KindNothingToRedo  Kind = "NOTHING_TO_REDO"
	KindStorage        Kind = "STORAGE_IO"
	KindRateLimited    Kind = "RATE_LIMITED"
	KindUnknown        Kind = "UNKNOWN"
)

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
	Kind    Kind
}

// 校验相关错误。
var (
	InvalidName     = Definition{Code: "INVALID_NAME", Message: "Name must be at least 2 characters", Kind: KindValidation}
	InvalidPhone    = Definition{Code: "INVALID_PHONE", Message: "Phone must be '+' followed by 7-15 digits", Kind: KindValidation}
	InvalidQuery    = Definition{Code: "INVALID_QUERY", Message: "Search query is empty", Kind: KindValidation}
	InvalidBirthday = Definition{Code: "INVALID_BIRTHDAY", Message: "Birthday must be a YYYY-MM-DD date", Kind: KindValidation}
	InvalidDays     = Definition{Code: "INVALID_DAYS", Message: "Days must be a non-negative integer", Kind: KindValidation}
	InvalidCSV      = Definition{Code: "INVALID_CSV", Message: "CSV must have a header with name and phone columns", Kind: KindValidation}
)

// 联系人模块错误。
var (
	DuplicateName   = Definition{Code: "DUPLICATE_NAME", Message: "Contact name already exists", Kind: KindDuplicateName}
	DuplicatePhone  = Definition{Code: "DUPLICATE_PHONE", Message: "Phone already used by another contact", Kind: KindDuplicatePhone}
	ContactNotFound = Definition{Code: "CONTACT_NOT_FOUND", Message: "Contact not found", Kind: KindNotFound}
)

// 撤销/重做错误。
var (
	NothingToUndo = Definition{Code: "NOTHING_TO_UNDO", Message: "Nothing to undo", Kind: KindNothingToUndo}
	NothingToRedo = Definition{Code: "NOTHING_TO_REDO", Message: "Nothing to redo", Kind: KindNothingToRedo}
)

// 存储错误。
var (
	StorageIO = Definition{Code: "STORAGE_IO", Message: "Storage read/write failed", Kind: KindStorage}
)

// HTTP 前端错误。
var (
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, try again later", Kind: KindRateLimited}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidName.Code:     InvalidName,
	InvalidPhone.Code:    InvalidPhone,
	InvalidQuery.Code:    InvalidQuery,
	InvalidBirthday.Code: InvalidBirthday,
	InvalidDays.Code:     InvalidDays,
	InvalidCSV.Code:      InvalidCSV,
	DuplicateName.Code:   DuplicateName,
	DuplicatePhone.Code:  DuplicatePhone,
	ContactNotFound.Code: ContactNotFound,
	NothingToUndo.Code:   NothingToUndo,
	NothingToRedo.Code:   NothingToRedo,
	StorageIO.Code:       StorageIO,
	TooManyRequests.Code: TooManyRequests,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error", Kind: KindUnknown}
}

// With 在 Definition 上附加上下文，errors.Is 仍然可以匹配到原始定义
func With(def Definition, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", def, fmt.Sprintf(format, args...))
}

// Storage 包装底层 I/O 错误
func Storage(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", StorageIO, op, path, err)
}

// As 取出错误链中的 Definition
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

// KindOf 返回错误类别，非业务错误返回 KindUnknown
func KindOf(err error) Kind {
	if def, ok := As(err); ok {
		return def.Kind
	}
	return KindUnknown
}

// SkipMessageError 表示消息无需处理（重复投递等），消费者应直接 ack
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}
