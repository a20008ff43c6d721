package middleware

import (
	"quizdraft/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateLessonID validates the lessonID path parameter
func (vm *ValidationMiddleware) ValidateLessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID := c.Params("lessonID")

		if errors := vm.validator.ValidateLessonID(lessonID); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		// Store validated value in context for handlers to use
		c.Locals("validated_lesson_id", lessonID)
		return c.Next()
	}
}

// ValidateLocalID validates the localID path parameter
func (vm *ValidationMiddleware) ValidateLocalID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		localID := c.Params("localID")

		if errors := vm.validator.ValidateLocalID(localID); len(errors) > 0 {
			return errors
		}

		c.Locals("validated_local_id", localID)
		return c.Next()
	}
}
