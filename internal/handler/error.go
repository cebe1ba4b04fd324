package handler

import (
	"errors"

	"github.com/updateserve/omaha-backend/internal/handler/response"
	"github.com/updateserve/omaha-backend/internal/pkg/errs"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Error maps a failure onto the admin JSON envelope. Fiber's own
// errors keep their default handling, biz errors carry their code and
// details out, anything else is masked as a plain 500.
func Error(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fiber.DefaultErrorHandler(c, fe)
	}

	var be *errs.Error
	if errors.As(err, &be) {
		resp := response.BusinessError(be.Message(), be.Details()).With(be.BizCode())
		return c.Status(be.HTTPCode()).JSON(resp)
	}

	zap.L().Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(response.UnexpectedError())
}
