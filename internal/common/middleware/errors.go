package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ErrorHandler renders handler errors as {"error": "..."}. Errors that are
// not *fiber.Error become a 500 and are logged.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": http.StatusText(http.StatusInternalServerError)})
}
