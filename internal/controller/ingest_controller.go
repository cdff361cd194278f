package controller

import (
	"arcana-be/internal/dto"
	"arcana-be/internal/pkg/serverutils"
	"arcana-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Sync(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
}

type ingestController struct {
	service service.IIngestService
}

func NewIngestController(service service.IIngestService) IIngestController {
	return &ingestController{service: service}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Post(":workspaceId", c.Sync)
	h.Get(":workspaceId/:provider", c.State)
	h.Delete(":workspaceId", c.Disconnect)
}

func (c *ingestController) Sync(ctx *fiber.Ctx) error {
	workspaceID, _ := uuid.Parse(ctx.Params("workspaceId"))

	var req dto.SyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Sync(ctx.Context(), workspaceID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sync data source", res))
}

func (c *ingestController) State(ctx *fiber.Ctx) error {
	workspaceID, _ := uuid.Parse(ctx.Params("workspaceId"))
	provider := ctx.Params("provider")

	res, err := c.service.State(ctx.Context(), workspaceID, provider)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sync state", res))
}

func (c *ingestController) Disconnect(ctx *fiber.Ctx) error {
	workspaceID, _ := uuid.Parse(ctx.Params("workspaceId"))

	var req dto.DisconnectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Disconnect(ctx.Context(), workspaceID, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success disconnect data source", nil))
}
