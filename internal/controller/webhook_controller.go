package controller

import (
	"formhive-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

type webhookController struct {
	service service.IWebhookService
}

func NewWebhookController(service service.IWebhookService) IWebhookController {
	return &webhookController{service: service}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	// Unauthenticated: the provider signature is the auth.
	r.Post("/webhooks/:provider", c.Handle)
}

func (c *webhookController) Handle(ctx *fiber.Ctx) error {
	headers := make(map[string]string)
	ctx.Request().Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})

	// Pass the body through untouched; signature verification needs
	// the exact bytes the provider signed.
	if err := c.service.Process(ctx.Context(), ctx.Params("provider"), headers, ctx.Body()); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}
