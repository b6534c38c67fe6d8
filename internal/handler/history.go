package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"AddressBook/internal/history"
	"AddressBook/pkg/response"
)

type historyResult struct {
	Op      string `json:"op"`
	CanUndo bool   `json:"can_undo"`
	CanRedo bool   `json:"can_redo"`
}

// Undo 撤销最近一次修改
// POST /v1/undo
func (h *ContactHandler) Undo(ctx context.Context, c *app.RequestContext) {
	h.step(ctx, c, "undo", h.svc.Undo)
}

// Redo 重做最近一次撤销
// POST /v1/redo
func (h *ContactHandler) Redo(ctx context.Context, c *app.RequestContext) {
	h.step(ctx, c, "redo", h.svc.Redo)
}

func (h *ContactHandler) step(ctx context.Context, c *app.RequestContext, command string, fn func(context.Context) (history.Entry, error)) {
	h.mu.Lock()
	entry, err := fn(ctx)
	res := historyResult{CanUndo: h.svc.CanUndo(), CanRedo: h.svc.CanRedo()}
	h.mu.Unlock()

	h.record(ctx, command)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	res.Op = entry.Op()
	response.Success(ctx, c, res)
}
