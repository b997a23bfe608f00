package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pillme-team/pillme-server/pkg/config"
	"github.com/pillme-team/pillme-server/pkg/db"
	"github.com/pillme-team/pillme-server/pkg/pill"
	"github.com/pillme-team/pillme-server/pkg/user"
)

type pillRequest struct {
	PillName     string   `json:"pillName"`
	TakeInterval int      `json:"takeInterval"`
	Day          []int    `json:"day"`
	Specific     []string `json:"specific"`
	TimeList     []string `json:"timeList"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Color        int      `json:"color"`
}

// localToday maps an instant to its calendar day under the fixed offset
// the whole system runs on.
func localToday(now time.Time) time.Time {
	offset := time.Duration(config.AppConfig.Server.TimezoneOffsetHours) * time.Hour
	return pill.DateOnly(now.UTC().Add(offset))
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := c.ParamsInt(name)
	if err != nil || v <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(v), nil
}

// buildCreateInput validates the request before any storage access.
func buildCreateInput(req pillRequest) (pill.CreateInput, error) {
	if err := pill.ValidateName(req.PillName); err != nil {
		return pill.CreateInput{}, err
	}
	rule, err := pill.ResolveRule(req.TakeInterval, req.Day, req.Specific)
	if err != nil {
		return pill.CreateInput{}, err
	}
	start, err := pill.ParseDate(req.Start)
	if err != nil {
		return pill.CreateInput{}, err
	}
	in := pill.CreateInput{
		Name:  req.PillName,
		Rule:  rule,
		Times: req.TimeList,
		Start: start,
		Color: req.Color,
	}
	if req.End != "" {
		end, err := pill.ParseDate(req.End)
		if err != nil {
			return pill.CreateInput{}, err
		}
		in.End = &end
	}
	return in, nil
}

func handleAddPill(c *fiber.Ctx) error {
	var req pillRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if req.PillName == "" || len(req.TimeList) == 0 || req.Start == "" {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	in, err := buildCreateInput(req)
	if err != nil {
		return respondError(c, err)
	}
	created, err := pill.Create(callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "ADD_PILL_SUCCESS", created)
}

func handleAddMemberPill(c *fiber.Ctx) error {
	memberID, err := paramUint(c, "memberId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	var req pillRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if req.PillName == "" || len(req.TimeList) == 0 || req.Start == "" {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	in, err := buildCreateInput(req)
	if err != nil {
		return respondError(c, err)
	}
	created, err := pill.CreateForMember(callerID(c), memberID, in)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "ADD_MEMBER_PILL_SUCCESS", created)
}

func handlePillCount(c *fiber.Ctx) error {
	info, err := pill.Count(callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_PILL_COUNT_SUCCESS", info)
}

// handleMemberPillCount reads a linked member's remaining slots, e.g.
// before proxy-adding a pill for them.
func handleMemberPillCount(c *fiber.Ctx) error {
	memberID, err := paramUint(c, "memberId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if err := user.Exists(db.DB, memberID); err != nil {
		return respondError(c, err)
	}
	if err := user.CanActFor(db.DB, callerID(c), memberID); err != nil {
		return respondError(c, err)
	}
	info, err := pill.Count(memberID)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_PILL_COUNT_SUCCESS", info)
}

func handleModifyPill(c *fiber.Ctx) error {
	pillID, err := paramUint(c, "pillId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	var req pillRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}

	var in pill.ModifyInput
	if req.PillName != "" {
		in.Name = &req.PillName
	}
	if req.TakeInterval > 0 || len(req.Day) > 0 || len(req.Specific) > 0 {
		rule, err := pill.ResolveRule(req.TakeInterval, req.Day, req.Specific)
		if err != nil {
			return respondError(c, err)
		}
		in.Rule = &rule
	}
	if len(req.TimeList) > 0 {
		in.Times = req.TimeList
	}
	if req.Start != "" {
		start, err := pill.ParseDate(req.Start)
		if err != nil {
			return respondError(c, err)
		}
		in.Start = &start
	}
	if req.End != "" {
		end, err := pill.ParseDate(req.End)
		if err != nil {
			return respondError(c, err)
		}
		in.End = &end
	}
	if req.Color > 0 {
		in.Color = &req.Color
	}

	updated, err := pill.Modify(callerID(c), pillID, in)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "UPDATE_PILL_SUCCESS", updated)
}

func handleStopPill(c *fiber.Ctx) error {
	pillID, err := paramUint(c, "pillId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	// the body is optional, an empty one stops the pill today
	var req struct {
		Date string `json:"date"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, MsgNullValue)
		}
	}
	stopDate := localToday(time.Now())
	if req.Date != "" {
		stopDate, err = pill.ParseDate(req.Date)
		if err != nil {
			return respondError(c, err)
		}
	}
	stopped, err := pill.Stop(callerID(c), pillID, stopDate)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "STOP_PILL_SUCCESS", stopped)
}

func handleDeletePill(c *fiber.Ctx) error {
	pillID, err := paramUint(c, "pillId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if err := pill.Remove(callerID(c), pillID); err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "DELETE_PILL_SUCCESS", nil)
}
