package handler

import (
	"context"
	"sync"

	"github.com/cloudwego/hertz/pkg/app"

	"AddressBook/internal/model/dto"
	"AddressBook/internal/service"
	"AddressBook/internal/telemetry"
	"AddressBook/pkg/response"
)

// ContactHandler 通讯录 HTTP 接口
// service 本身不加锁，这里用一把互斥锁串行化所有请求
type ContactHandler struct {
	mu        sync.Mutex
	svc       *service.ContactService
	telemetry telemetry.Recorder
}

func NewContactHandler(svc *service.ContactService, rec telemetry.Recorder) *ContactHandler {
	if rec == nil {
		rec = telemetry.Nop{}
	}
	return &ContactHandler{svc: svc, telemetry: rec}
}

func (h *ContactHandler) record(ctx context.Context, command string) {
	h.telemetry.Record(ctx, command)
}

// ListContacts 列出全部联系人，按姓名排序
// GET /v1/contacts
func (h *ContactHandler) ListContacts(ctx context.Context, c *app.RequestContext) {
	h.mu.Lock()
	all := h.svc.All(ctx)
	h.mu.Unlock()

	h.record(ctx, "all")
	response.SuccessWithMeta(ctx, c, dto.NewContactItems(all), map[string]interface{}{"total": len(all)})
}

// CreateContact 新增联系人
// POST /v1/contacts
func (h *ContactHandler) CreateContact(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateContactRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	h.mu.Lock()
	contact, err := h.svc.Add(ctx, req)
	h.mu.Unlock()

	h.record(ctx, "add")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, dto.NewContactItem(contact))
}

// GetContact 查询单个联系人
// GET /v1/contacts/:name
func (h *ContactHandler) GetContact(ctx context.Context, c *app.RequestContext) {
	h.mu.Lock()
	contact, err := h.svc.GetRecord(ctx, c.Param("name"))
	h.mu.Unlock()

	h.record(ctx, "phone")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewContactItem(contact))
}

// UpdateContact 修改电话、生日、备注
// PUT /v1/contacts/:name
func (h *ContactHandler) UpdateContact(ctx context.Context, c *app.RequestContext) {
	var req dto.UpdateContactRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	h.mu.Lock()
	contact, err := h.svc.Change(ctx, c.Param("name"), req)
	h.mu.Unlock()

	h.record(ctx, "change")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewContactItem(contact))
}

// DeleteContact 删除联系人
// DELETE /v1/contacts/:name
func (h *ContactHandler) DeleteContact(ctx context.Context, c *app.RequestContext) {
	h.mu.Lock()
	_, err := h.svc.Remove(ctx, c.Param("name"))
	h.mu.Unlock()

	h.record(ctx, "remove")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// RenameContact 重命名
// POST /v1/contacts/:name/rename
func (h *ContactHandler) RenameContact(ctx context.Context, c *app.RequestContext) {
	var req dto.RenameContactRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	h.mu.Lock()
	contact, err := h.svc.Rename(ctx, c.Param("name"), req.NewName)
	h.mu.Unlock()

	h.record(ctx, "rename")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.NewContactItem(contact))
}

// SearchContacts 按姓名或电话子串搜索
// GET /v1/search?q=
func (h *ContactHandler) SearchContacts(ctx context.Context, c *app.RequestContext) {
	h.mu.Lock()
	found, err := h.svc.Search(ctx, c.Query("q"))
	h.mu.Unlock()

	h.record(ctx, "search")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, dto.NewContactItems(found), map[string]interface{}{"total": len(found)})
}

// GetStats 统计信息
// GET /v1/stats
func (h *ContactHandler) GetStats(ctx context.Context, c *app.RequestContext) {
	h.mu.Lock()
	st := h.svc.Stats(ctx)
	h.mu.Unlock()

	h.record(ctx, "stats")
	response.Success(ctx, c, st)
}
