package handler

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	pkgerrors "AddressBook/pkg/errors"
	"AddressBook/pkg/response"
)

const defaultBirthdayDays = 7

// ImportContacts 以请求体中的 CSV 导入，整批作为一次可撤销操作
// POST /v1/import
func (h *ContactHandler) ImportContacts(ctx context.Context, c *app.RequestContext) {
	body := c.Request.Body()

	h.mu.Lock()
	res, err := h.svc.ImportCSV(ctx, bytes.NewReader(body))
	h.mu.Unlock()

	h.record(ctx, "import")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, res)
}

// ExportContacts 导出 CSV
// GET /v1/export
func (h *ContactHandler) ExportContacts(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer

	h.mu.Lock()
	err := h.svc.ExportCSV(ctx, &buf)
	h.mu.Unlock()

	h.record(ctx, "export")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.CSV(ctx, c, "contacts.csv", buf.Bytes())
}

// UpcomingBirthdays 未来 days 天内的生日，format=csv 时返回附件
// GET /v1/birthdays?days=7
func (h *ContactHandler) UpcomingBirthdays(ctx context.Context, c *app.RequestContext) {
	days := defaultBirthdayDays
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(ctx, c, pkgerrors.With(pkgerrors.InvalidDays, "%q", raw))
			return
		}
		days = n
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		h.mu.Lock()
		err := h.svc.ExportBirthdaysCSV(ctx, &buf, days)
		h.mu.Unlock()

		h.record(ctx, "birthdays_export")
		if err != nil {
			response.Error(ctx, c, err)
			return
		}
		response.CSV(ctx, c, "birthdays.csv", buf.Bytes())
		return
	}

	h.mu.Lock()
	items, err := h.svc.UpcomingBirthdays(ctx, days)
	h.mu.Unlock()

	h.record(ctx, "birthdays")
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{"days": days})
}
