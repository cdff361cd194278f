package controller

import (
	"arcana-be/internal/apperr"
	"arcana-be/internal/dto"
	"arcana-be/internal/pkg/serverutils"
	"arcana-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Authorize(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service service.IOAuthService
}

func NewOAuthController(service service.IOAuthService) IOAuthController {
	return &oauthController{service: service}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/oauth/v1")
	h.Post("authorize", c.Authorize)
	h.Get("callback", c.Callback)
}

func (c *oauthController) Authorize(ctx *fiber.Ctx) error {
	var req dto.AuthorizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Authorize(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start authorization", res))
}

// Callback handles the provider redirect. Code and state arrive as
// query parameters.
func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	req := dto.CallbackRequest{
		Code:  ctx.Query("code"),
		State: ctx.Query("state"),
	}
	if req.Code == "" || req.State == "" {
		return apperr.New(apperr.KindValidation, "missing code or state")
	}

	res, err := c.service.HandleCallback(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success connect data source", res))
}
