package controller

import (
	"arcana-be/internal/dto"
	"arcana-be/internal/pkg/serverutils"
	"arcana-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type agentController struct {
	service service.IAgentService
}

func NewAgentController(service service.IAgentService) IAgentController {
	return &agentController{service: service}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Post(":workspaceId/query", c.Query)
	h.Post(":workspaceId/search", c.Search)
}

func (c *agentController) Query(ctx *fiber.Ctx) error {
	workspaceID, _ := uuid.Parse(ctx.Params("workspaceId"))

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.Context(), workspaceID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run agent query", res))
}

func (c *agentController) Search(ctx *fiber.Ctx) error {
	workspaceID, _ := uuid.Parse(ctx.Params("workspaceId"))

	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.Context(), workspaceID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search workspace", res))
}
