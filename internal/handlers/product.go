package handlers

import (
	"encoding/json"

	"ledgerpay/internal/services/catalog"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type addProductRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	Description string          `json:"description" validate:"required,max=255"`
}

type productView struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
}

type ProductHandler struct {
	catalog catalog.Service
	log     *zap.Logger
}

func NewProductHandler(c catalog.Service, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: c, log: log}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.catalog.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{
			ID:          p.ID,
			Name:        p.Name,
			Price:       money(p.Price),
			Description: p.Description,
		})
	}
	return utils.Success(c, out)
}

func (h *ProductHandler) Add(c *fiber.Ctx) error {
	var req addProductRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	p, err := h.catalog.Add(c.UserContext(), req.Name, req.Price, req.Description)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, fiber.Map{
		"id":      p.ID,
		"message": "Product added",
	})
}
