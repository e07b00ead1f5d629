package handlers

import (
	"errors"
	"fmt"
	"log"

	"ecobazaar/internal/apperrors"
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindNotFound:           fiber.StatusNotFound,
	apperrors.KindOutOfStock:         fiber.StatusConflict,
	apperrors.KindInvalidState:       fiber.StatusConflict,
	apperrors.KindDuplicate:          fiber.StatusConflict,
	apperrors.KindExpired:            fiber.StatusGone,
	apperrors.KindBelowMinimum:       fiber.StatusBadRequest,
	apperrors.KindEmptyCart:          fiber.StatusBadRequest,
	apperrors.KindValidation:         fiber.StatusBadRequest,
	apperrors.KindInsufficientPoints: fiber.StatusUnprocessableEntity,
	apperrors.KindUnauthorized:       fiber.StatusForbidden,
}

// respondError maps business errors to their status. Anything else is a 500
// with the fallback message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status, ok := kindStatus[appErr.Kind]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"message": appErr.Message,
			"kind":    string(appErr.Kind),
		})
	}
	log.Printf("%s: %v", fallback, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fallback,
		"error":   err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed reports each failing field.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

func identity(c *fiber.Ctx) models.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}
