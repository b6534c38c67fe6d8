package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"AddressBook/internal/handler"
	"AddressBook/internal/middleware"
)

func Register(h *server.Hertz, contacts *handler.ContactHandler) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 只读接口
	{
		v1.GET("/contacts", contacts.ListContacts)
		v1.GET("/contacts/:name", contacts.GetContact)
		v1.GET("/search", contacts.SearchContacts)
		v1.GET("/stats", contacts.GetStats)
		v1.GET("/birthdays", contacts.UpcomingBirthdays)
		v1.GET("/export", contacts.ExportContacts)
	}

	// 修改类接口，启用 Redis 时按 IP 限流
	write := v1.Group("", middleware.WriteRateLimitMiddleware())
	{
		write.POST("/contacts", contacts.CreateContact)
		write.PUT("/contacts/:name", contacts.UpdateContact)
		write.DELETE("/contacts/:name", contacts.DeleteContact)
		write.POST("/contacts/:name/rename", contacts.RenameContact)
		write.POST("/undo", contacts.Undo)
		write.POST("/redo", contacts.Redo)
		write.POST("/import", contacts.ImportContacts)
	}
}
