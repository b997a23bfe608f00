package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the fiber app with the shared middleware stack. Panics are
// recovered once here and surface as the generic infrastructure error.
func New() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return respondError(c, err)
		},
	})
	app.Use(recover.New())
	app.Use(RequestID())
	Register(app)
	return app
}
