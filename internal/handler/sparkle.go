package handler

import (
	"github.com/updateserve/omaha-backend/internal/logic"
	"github.com/updateserve/omaha-backend/internal/protocol"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SparkleHandler serves appcast feeds for macOS clients.
type SparkleHandler struct {
	logger       *zap.Logger
	sparkleLogic *logic.SparkleLogic
}

func NewSparkleHandler(logger *zap.Logger, sparkleLogic *logic.SparkleLogic) *SparkleHandler {
	return &SparkleHandler{
		logger:       logger,
		sparkleLogic: sparkleLogic,
	}
}

func (h *SparkleHandler) Register(r fiber.Router) {
	r.Get("/sparkle/:app/:channel/appcast.xml", h.Appcast)
}

type appcastRequest struct {
	AppVersion string `query:"appVersionShort"`
	OSVersion  string `query:"osVersion"`
}

func (h *SparkleHandler) Appcast(c *fiber.Ctx) error {
	req := &appcastRequest{}
	if err := c.QueryParser(req); err != nil {
		return fiber.ErrBadRequest
	}

	cast, err := h.sparkleLogic.Appcast(c.UserContext(), c.Params("app"), c.Params("channel"), req.AppVersion, req.OSVersion)
	if err != nil {
		h.logger.Error("assembling appcast failed",
			zap.String("app", c.Params("app")),
			zap.String("channel", c.Params("channel")),
			zap.Error(err),
		)
		return fiber.ErrInternalServerError
	}

	body, err := protocol.RenderAppcast(cast)
	if err != nil {
		h.logger.Error("rendering appcast failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}

	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Status(fiber.StatusOK).Send(body)
}
