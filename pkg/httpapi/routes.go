package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App) {
	app.Post("/auth/login", handleLogin)

	userGroup := app.Group("/user", Identity())
	userGroup.Put("/name", handleUpdateUsername)
	userGroup.Put("/device", handleSetDeviceToken)
	userGroup.Put("/telegram", handleSetTelegramChat)

	group := app.Group("/group", Identity())
	group.Get("/", handleListMembers)
	group.Post("/", handleAddMember)
	group.Put("/:linkId/accept", handleAcceptMember)

	pillGroup := app.Group("/pill", Identity())
	pillGroup.Post("/", handleAddPill)
	pillGroup.Get("/count", handlePillCount)
	pillGroup.Get("/:memberId/count", handleMemberPillCount)
	pillGroup.Post("/:memberId", handleAddMemberPill)
	pillGroup.Put("/stop/:pillId", handleStopPill)
	pillGroup.Put("/:pillId", handleModifyPill)
	pillGroup.Delete("/:pillId", handleDeletePill)

	scheduleGroup := app.Group("/schedule", Identity())
	scheduleGroup.Get("/", handleMyCalendar)
	scheduleGroup.Get("/detail", handleMySchedule)
	scheduleGroup.Put("/check/:pillId", handleCheckSchedule)
	scheduleGroup.Put("/uncheck/:pillId", handleUncheckSchedule)
	scheduleGroup.Get("/:memberId/detail", handleMemberSchedule)
	scheduleGroup.Get("/:memberId", handleMemberCalendar)
}
