package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pillme-team/pillme-server/pkg/user"
)

type loginRequest struct {
	SocialID string `json:"socialId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// handleLogin implements the social-login exchange: upsert the user for
// the opaque social id and hand back an access token.
func handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if strings.TrimSpace(req.SocialID) == "" {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}

	u, err := user.GetOrCreateBySocial(req.SocialID, req.Email, req.Username)
	if err != nil {
		return respondError(c, err)
	}
	token, err := IssueToken(u.ID)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "LOGIN_SUCCESS", fiber.Map{
		"user":        u,
		"accessToken": token,
	})
}

func handleUpdateUsername(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	u, err := user.UpdateUsername(callerID(c), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "UPDATE_USER_SUCCESS", u)
}

func handleSetDeviceToken(c *fiber.Ctx) error {
	var req struct {
		DeviceToken string `json:"deviceToken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if err := user.SetDeviceToken(callerID(c), req.DeviceToken); err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "UPDATE_DEVICE_TOKEN_SUCCESS", nil)
}

func handleSetTelegramChat(c *fiber.Ctx) error {
	var req struct {
		ChatID int64 `json:"chatId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	if err := user.SetTelegramChat(callerID(c), req.ChatID); err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "UPDATE_TELEGRAM_SUCCESS", nil)
}

func handleListMembers(c *fiber.Ctx) error {
	links, err := user.Members(callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "READ_MEMBER_SUCCESS", links)
}

func handleAddMember(c *fiber.Ctx) error {
	var req struct {
		MemberID   uint   `json:"memberId"`
		MemberName string `json:"memberName"`
	}
	if err := c.BodyParser(&req); err != nil || req.MemberID == 0 {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	link, err := user.AddMember(callerID(c), req.MemberID, req.MemberName)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "ADD_MEMBER_SUCCESS", link)
}

func handleAcceptMember(c *fiber.Ctx) error {
	linkID, err := paramUint(c, "linkId")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, MsgNullValue)
	}
	link, err := user.AcceptMember(callerID(c), linkID)
	if err != nil {
		return respondError(c, err)
	}
	return success(c, fiber.StatusOK, "ACCEPT_MEMBER_SUCCESS", link)
}
