package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pillme-team/pillme-server/pkg/alert"
	"github.com/pillme-team/pillme-server/pkg/domain"
	"github.com/pillme-team/pillme-server/pkg/logger"
)

// Message keys are a stable contract with clients; renaming one is a
// breaking change.
const (
	MsgNullValue           = "NULL_VALUE"
	MsgNoPillName          = "NO_PILL_NAME"
	MsgPillCountOver       = "PILL_COUNT_OVER"
	MsgNoUser              = "NO_USER"
	MsgNoMember            = "NO_MEMBER"
	MsgNoPill              = "NO_PILL"
	MsgPillUnauthorized    = "PILL_UNAUTHORIZED"
	MsgAlreadyPillStop     = "ALREADY_PILL_STOP"
	MsgNoAuthenticated     = "NO_AUTHENTICATED"
	MsgInternalServerError = "INTERNAL_SERVER_ERROR"
)

type Envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Status:  status,
		Message: message,
	})
}

// respondError converts a service error into the envelope. Domain codes
// keep their stable (status, message) pair; anything else is an internal
// fault: logged, alerted, and masked with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	if code, ok := domain.CodeOf(err); ok {
		status, message := statusFor(code)
		return fail(c, status, message)
	}

	logger.Error("internal error", "method", c.Method(), "path", c.Path(), "request_id", requestID(c), "error", err)
	alert.Go(fmt.Sprintf("[ERROR] [%s] %s %v", c.Method(), c.Path(), err))
	return fail(c, fiber.StatusInternalServerError, MsgInternalServerError)
}

func statusFor(code domain.Code) (int, string) {
	switch code {
	case domain.CodeNullValue:
		return fiber.StatusBadRequest, MsgNullValue
	case domain.CodeNoPillName:
		return fiber.StatusBadRequest, MsgNoPillName
	case domain.CodePillCountOver:
		return fiber.StatusBadRequest, MsgPillCountOver
	case domain.CodeAlreadyStopped:
		return fiber.StatusBadRequest, MsgAlreadyPillStop
	case domain.CodeNoUser:
		return fiber.StatusNotFound, MsgNoUser
	case domain.CodeNoPill:
		return fiber.StatusNotFound, MsgNoPill
	case domain.CodeNoMember:
		return fiber.StatusForbidden, MsgNoMember
	case domain.CodePillUnauthorized:
		return fiber.StatusForbidden, MsgPillUnauthorized
	default:
		return fiber.StatusInternalServerError, MsgInternalServerError
	}
}
