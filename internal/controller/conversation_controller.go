package controller

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/dto"
	"ragchat-client/internal/pkg/serverutils"
	"ragchat-client/internal/service"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Add(ctx *fiber.Ctx) error
	Read(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	GenTitle(ctx *fiber.Ctx) error
	Content(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post(constant.RouteConversationAdd, auth, c.Add)
	r.Post(constant.RouteConversationRead, auth, c.Read)
	r.Post(constant.RouteConversationList, auth, c.List)
	r.Post(constant.RouteConversationDelete, auth, c.Delete)
	r.Post(constant.RouteConversationUpdate, auth, c.Update)
	r.Post(constant.RouteConversationTitle, auth, c.GenTitle)
	r.Get(constant.RouteContent+"*", c.Content)
}

func userId(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals("user_id").(string)
	return id
}

func (c *conversationController) Add(ctx *fiber.Ctx) error {
	var req dto.AddConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Add(ctx.UserContext(), userId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *conversationController) Read(ctx *fiber.Ctx) error {
	var req dto.ReadConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Read(ctx.UserContext(), userId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), userId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	var req dto.DeleteConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Delete(ctx.UserContext(), userId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// Update is routed so clients get a clear answer; renaming is not supported.
func (c *conversationController) Update(ctx *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotImplemented, "Conversation update is not supported")
}

func (c *conversationController) GenTitle(ctx *fiber.Ctx) error {
	var req dto.GenTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GenTitle(ctx.UserContext(), userId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *conversationController) Content(ctx *fiber.Ctx) error {
	name, err := url.PathUnescape(ctx.Params("*"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid source name")
	}

	doc, err := c.service.Content(ctx.UserContext(), name)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.SendString(doc.Content)
}
