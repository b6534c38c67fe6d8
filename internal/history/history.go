package history

import (
	"time"

	"AddressBook/internal/model"
)

// Entry 撤销栈中的一项，描述如何回到操作之前的状态
//
// 只有本包内定义的类型实现 Entry，使用方用 type switch 穷举处理。
type Entry interface {
	// Op 操作名，用于日志和指标
	Op() string
	isEntry()
}

// AddedRecord 新增了 Name，撤销时删除它
type AddedRecord struct {
	Name string
}

// RemovedRecord 删除前的完整快照，撤销时原样恢复
type RemovedRecord struct {
	Record model.Contact
}

// ChangedPhone 修改前的号码/生日/备注和更新时间
type ChangedPhone struct {
	Name      string
	Phone     string
	Birthday  *string
	Notes     *string
	UpdatedAt time.Time
}

// Renamed OldName 被改成了 NewName，UpdatedAt 是改名前的更新时间
type Renamed struct {
	OldName   string
	NewName   string
	UpdatedAt time.Time
}

// BulkAdded 一次导入新增的全部姓名，作为一个整体撤销
type BulkAdded struct {
	Names []string
}

// BulkRemoved 撤销导入时删掉的记录，重做时一起恢复
type BulkRemoved struct {
	Records []model.Contact
}

func (AddedRecord) Op() string { return "add" }
func (RemovedRecord) Op() string { return "remove" }
func (ChangedPhone) Op() string { return "change" }
func (Renamed) Op() string { return "rename" }
func (BulkAdded) Op() string { return "bulk_add" }
func (BulkRemoved) Op() string { return "bulk_remove" }

func (AddedRecord) isEntry() {}
func (RemovedRecord) isEntry() {}
func (ChangedPhone) isEntry() {}
func (Renamed) isEntry() {}
func (BulkAdded) isEntry() {}
func (BulkRemoved) isEntry() {}

var (
	_ Entry = AddedRecord{}
	_ Entry = RemovedRecord{}
	_ Entry = ChangedPhone{}
	_ Entry = Renamed{}
	_ Entry = BulkAdded{}
	_ Entry = BulkRemoved{}
)
