package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pillme-team/pillme-server/pkg/pill"
	"github.com/pillme-team/pillme-server/pkg/schedule"
)

const monthLayout = "2006-01"

func queryDay(c *fiber.Ctx) (time.Time, error) {
	return pill.ParseDate(c.Query("date"))
}

func queryMonth(c *fiber.Ctx) (time.Time, error) {
	return time.Parse(monthLayout, c.Query("date"))
}

// handleMyCalendar answers GET /schedule?date=YYYY-MM with one summary
// per day of the month.
func handleMyCalendar(c *fiber.Ctx) error {
	month, err := queryMonth(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	days, err := schedule.MonthView(callerID(c), month.Year(), month.Month())
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_CALENDAR_SUCCESS", days)
}

// handleMySchedule answers GET /schedule/detail?date=YYYY-MM-DD with the
// checkable entries for that day.
func handleMySchedule(c *fiber.Ctx) error {
	day, err := queryDay(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	entries, err := schedule.DayView(callerID(c), day)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_SCHEDULE_SUCCESS", entries)
}

func handleMemberCalendar(c *fiber.Ctx) error {
	memberID, err := paramUint(c, "memberId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	month, err := queryMonth(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	days, err := schedule.MemberMonthView(callerID(c), memberID, month.Year(), month.Month())
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_CALENDAR_SUCCESS", days)
}

func handleMemberSchedule(c *fiber.Ctx) error {
	memberID, err := paramUint(c, "memberId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	day, err := queryDay(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	entries, err := schedule.MemberDayView(callerID(c), memberID, day)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_SCHEDULE_SUCCESS", entries)
}

type checkRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func parseCheckRequest(c *fiber.Ctx) (uint, time.Time, string, error) {
	pillID, err := paramUint(c, "pillId")
	if err != nil {
		return 0, time.Time{}, "", err
	}
	var req checkRequest
	if err := c.BodyParser(&req); err != nil {
		return 0, time.Time{}, "", err
	}
	day, err := pill.ParseDate(req.Date)
	if err != nil {
		return 0, time.Time{}, "", err
	}
	return pillID, day, req.Time, nil
}

func handleCheckSchedule(c *fiber.Ctx) error {
	pillID, day, timeOfDay, err := parseCheckRequest(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	row, err := schedule.Check(callerID(c), pillID, day, timeOfDay)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "CHECK_SCHEDULE_SUCCESS", row)
}

func handleUncheckSchedule(c *fiber.Ctx) error {
	pillID, day, timeOfDay, err := parseCheckRequest(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	row, err := schedule.Uncheck(callerID(c), pillID, day, timeOfDay)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "UNCHECK_SCHEDULE_SUCCESS", row)
}
