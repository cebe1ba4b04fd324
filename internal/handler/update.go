package handler

import (
	"time"

	"github.com/updateserve/omaha-backend/internal/logic"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/protocol"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const contentTypeXML = "text/xml; charset=utf-8"

// UpdateHandler owns the Omaha endpoint. One route, always answered:
// undecodable payloads get the fixed 400 body, everything else an
// HTTP 200 protocol envelope.
type UpdateHandler struct {
	logger      *zap.Logger
	updateLogic *logic.UpdateLogic
}

func NewUpdateHandler(logger *zap.Logger, updateLogic *logic.UpdateLogic) *UpdateHandler {
	return &UpdateHandler{
		logger:      logger,
		updateLogic: updateLogic,
	}
}

func (h *UpdateHandler) Register(r fiber.Router) {
	r.Post("/service/update2", h.Update)
}

func (h *UpdateHandler) Update(c *fiber.Ctx) error {
	req, err := protocol.ParseRequest(c.Body())
	if err != nil {
		h.logger.Debug("rejecting update payload",
			zap.String("ip", c.IP()),
			zap.Error(err),
		)
		c.Set(fiber.HeaderContentType, contentTypeXML)
		return c.Status(fiber.StatusBadRequest).SendString(protocol.BadRequestBody)
	}

	resp := h.updateLogic.Decide(c.UserContext(), req, &model.DecideOptions{
		Now:      time.Now(),
		ClientIP: c.IP(),
	})

	body, err := protocol.RenderResponse(resp)
	if err != nil {
		h.logger.Error("rendering update response failed", zap.Error(err))
		body = protocol.RenderErrorEnvelope(model.FaultInternal, time.Now())
	}

	c.Set(fiber.HeaderContentType, contentTypeXML)
	return c.Status(fiber.StatusOK).Send(body)
}
