package controller

import (
	"formhive-be/internal/dto"
	"formhive-be/internal/pkg/serverutils"
	"formhive-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// formController exposes the thin, limit-guarded resource surface the
// usage counters are derived from.
type IFormController interface {
	RegisterRoutes(r fiber.Router)
	CreateForm(ctx *fiber.Ctx) error
	SubmitForm(ctx *fiber.Ctx) error
	ExportForm(ctx *fiber.Ctx) error
	CheckLimit(ctx *fiber.Ctx) error
}

type formController struct {
	service service.IUsageService
}

func NewFormController(service service.IUsageService) IFormController {
	return &formController{service: service}
}

func (c *formController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/forms")
	// Submissions come from anonymous respondents.
	h.Post("/:id/submissions", c.SubmitForm)

	h.Post("/", serverutils.JwtMiddleware, c.CreateForm)
	h.Post("/:id/exports", serverutils.JwtMiddleware, c.ExportForm)

	r.Get("/usage/check", serverutils.JwtMiddleware, c.CheckLimit)
}

func (c *formController) CreateForm(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateFormRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.CreateForm(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Form created", res))
}

func (c *formController) SubmitForm(ctx *fiber.Ctx) error {
	formId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form id")
	}

	var req dto.SubmitFormRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	if err := c.service.SubmitForm(ctx.Context(), formId, &req); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Submission recorded", struct{}{}))
}

func (c *formController) ExportForm(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	formId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form id")
	}

	var req dto.ExportFormRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := c.service.ExportForm(ctx.Context(), userId, formId, &req); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Export started", struct{}{}))
}

func (c *formController) CheckLimit(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	action := ctx.Query("action")
	if action == "" {
		return fiber.NewError(fiber.StatusBadRequest, "action is required")
	}

	var formId *uuid.UUID
	if raw := ctx.Query("form_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid form_id")
		}
		formId = &id
	}

	res, err := c.service.CheckLimit(ctx.Context(), userId, action, formId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Limit evaluated", res))
}
