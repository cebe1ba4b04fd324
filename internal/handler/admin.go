package handler

import (
	"strconv"

	"github.com/updateserve/omaha-backend/internal/handler/response"
	"github.com/updateserve/omaha-backend/internal/logic"
	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/pkg/errs"
	"github.com/updateserve/omaha-backend/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler is the management JSON API: applications, versions,
// artifact swaps, rollout windows and actions.
type AdminHandler struct {
	logger     *zap.Logger
	adminLogic *logic.AdminLogic
}

func NewAdminHandler(logger *zap.Logger, adminLogic *logic.AdminLogic) *AdminHandler {
	return &AdminHandler{
		logger:     logger,
		adminLogic: adminLogic,
	}
}

func (h *AdminHandler) Register(r fiber.Router) {
	api := r.Group("/api")
	api.Post("/applications", h.CreateApplication)
	api.Post("/versions", h.CreateVersion)
	api.Put("/versions/:id/artifact", h.ReplaceArtifact)
	api.Put("/versions/:id/rollout", h.SetPartialUpdate)
	api.Post("/versions/:id/actions", h.CreateAction)
	api.Delete("/versions/:id", h.DeleteVersion)
	api.Get("/stats/daily-users", h.DailyActiveUsers)
}

func (h *AdminHandler) CreateApplication(c *fiber.Ctx) error {
	param := &model.CreateApplicationParam{}
	if err := validator.ValidateBody(c, param); err != nil {
		return Error(c, err)
	}

	if err := h.adminLogic.CreateApplication(c.UserContext(), param); err != nil {
		return Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response.Success(nil))
}

type createVersionResponseData struct {
	ID      int64  `json:"id"`
	Version string `json:"version"`
	Number  uint64 `json:"number"`
}

func (h *AdminHandler) CreateVersion(c *fiber.Ctx) error {
	param := &model.CreateVersionParam{}
	if err := validator.ValidateBody(c, param); err != nil {
		return Error(c, err)
	}

	v, err := h.adminLogic.CreateVersion(c.UserContext(), param)
	if err != nil {
		return Error(c, err)
	}

	data := createVersionResponseData{
		ID:      v.ID,
		Version: v.Version,
		Number:  v.Number,
	}
	return c.Status(fiber.StatusCreated).JSON(response.Success(data))
}

func (h *AdminHandler) ReplaceArtifact(c *fiber.Ctx) error {
	id, err := versionID(c)
	if err != nil {
		return Error(c, err)
	}

	param := &model.UpdateArtifactParam{}
	if err := validator.ValidateBody(c, param); err != nil {
		return Error(c, err)
	}
	param.VersionID = id

	if err := h.adminLogic.ReplaceArtifact(c.UserContext(), param); err != nil {
		return Error(c, err)
	}
	return c.JSON(response.Success(nil))
}

func (h *AdminHandler) SetPartialUpdate(c *fiber.Ctx) error {
	id, err := versionID(c)
	if err != nil {
		return Error(c, err)
	}

	param := &model.SetPartialUpdateParam{}
	if err := validator.ValidateBody(c, param); err != nil {
		return Error(c, err)
	}
	param.VersionID = id

	if err := h.adminLogic.SetPartialUpdate(c.UserContext(), param); err != nil {
		return Error(c, err)
	}
	return c.JSON(response.Success(nil))
}

func (h *AdminHandler) CreateAction(c *fiber.Ctx) error {
	id, err := versionID(c)
	if err != nil {
		return Error(c, err)
	}

	param := &model.CreateActionParam{}
	if err := validator.ValidateBody(c, param); err != nil {
		return Error(c, err)
	}
	param.VersionID = id

	if err := h.adminLogic.CreateAction(c.UserContext(), param); err != nil {
		return Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response.Success(nil))
}

func (h *AdminHandler) DeleteVersion(c *fiber.Ctx) error {
	id, err := versionID(c)
	if err != nil {
		return Error(c, err)
	}

	if err := h.adminLogic.DeleteVersion(c.UserContext(), id); err != nil {
		return Error(c, err)
	}
	return c.JSON(response.Success(nil))
}

type dailyUsersResponseData struct {
	Date  string `json:"date"`
	Users int64  `json:"users"`
}

func (h *AdminHandler) DailyActiveUsers(c *fiber.Ctx) error {
	date := c.Query("date")

	users, err := h.adminLogic.DailyActiveUsers(c.UserContext(), date)
	if err != nil {
		return Error(c, err)
	}
	return c.JSON(response.Success(dailyUsersResponseData{
		Date:  date,
		Users: users,
	}))
}

func versionID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errs.ErrInvalidParams.WithDetails("version id must be an integer")
	}
	return id, nil
}
