package controller

import (
	"clara-backend/internal/dto"
	"clara-backend/internal/pkg/serverutils"
	"clara-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IVectorController interface {
	RegisterRoutes(r fiber.Router, authService service.IAuthService)
	Embed(ctx *fiber.Ctx) error
	AddDocument(ctx *fiber.Ctx) error
	AddLargeDocument(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	SearchChunks(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	DeleteDocument(ctx *fiber.Ctx) error
	DeleteLargeDocument(ctx *fiber.Ctx) error
}

type vectorController struct {
	service service.IVectorService
}

func NewVectorController(service service.IVectorService) IVectorController {
	return &vectorController{service: service}
}

func (c *vectorController) RegisterRoutes(r fiber.Router, authService service.IAuthService) {
	h := r.Group("/vectors")
	h.Post("/embed", serverutils.RequireAuth(authService), c.Embed)
	h.Post("/documents", serverutils.RequireAuth(authService), c.AddDocument)
	h.Post("/documents/large", serverutils.RequireAuth(authService), c.AddLargeDocument)
	h.Get("/documents", serverutils.RequireAuth(authService), c.ListDocuments)
	h.Delete("/documents/large/:id", serverutils.RequireAuth(authService), c.DeleteLargeDocument)
	h.Delete("/documents/:id", serverutils.RequireAuth(authService), c.DeleteDocument)
	// Searches work anonymously too; an authenticated caller only sees
	// their own records.
	h.Post("/search", serverutils.OptionalAuth(authService), c.Search)
	h.Post("/search/chunks", serverutils.OptionalAuth(authService), c.SearchChunks)
}

func (c *vectorController) Embed(ctx *fiber.Ctx) error {
	var req dto.EmbedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	vector, err := c.service.Embed(ctx.Context(), req.Text)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Embedding generated",
		"data":    dto.EmbedResponse{Embedding: vector},
	})
}

func (c *vectorController) AddDocument(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)

	var req dto.AddDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.service.AddDocument(ctx.Context(), user.Id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Document added",
		"data":    res,
	})
}

func (c *vectorController) AddLargeDocument(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)

	var req dto.AddLargeDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.service.AddLargeDocument(ctx.Context(), user.Id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Document ingested",
		"data":    res,
	})
}

func (c *vectorController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	results, err := c.service.Search(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Search complete",
		"data":    results,
	})
}

func (c *vectorController) SearchChunks(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	results, err := c.service.SearchChunks(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Search complete",
		"data":    results,
	})
}

func (c *vectorController) ListDocuments(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)

	results, err := c.service.ListDocuments(ctx.Context(), user.Id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Documents retrieved",
		"data":    results,
	})
}

func (c *vectorController) DeleteDocument(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)

	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.ErrBadRequest
	}

	if err := c.service.DeleteDocument(ctx.Context(), user.Id, documentId); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Document deleted",
		"data":    nil,
	})
}

func (c *vectorController) DeleteLargeDocument(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)

	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.ErrBadRequest
	}

	if err := c.service.DeleteLargeDocument(ctx.Context(), user.Id, documentId); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Document deleted",
		"data":    nil,
	})
}

func currentUserId(ctx *fiber.Ctx) *uuid.UUID {
	if user := serverutils.CurrentUser(ctx); user != nil {
		return &user.Id
	}
	return nil
}
