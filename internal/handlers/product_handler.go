package handlers

import (
	"ecobazaar/internal/carbon"
	"ecobazaar/internal/middleware"
	"ecobazaar/internal/models"
	"ecobazaar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name          string           `json:"name" validate:"required,min=3,max=150"`
	Description   string           `json:"description" validate:"omitempty,max=1000"`
	CategoryName  string           `json:"category_name" validate:"required"`
	Price         decimal.Decimal  `json:"price"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	City          string           `json:"city"`
	State         string           `json:"state"`
	EcoInputs     carbon.EcoInputs `json:"eco_inputs"`
}

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/slug/:slug", h.HandleGetProductBySlug)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", middleware.RequireCapability(models.CapManageCatalog), h.HandleCreateProduct)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.FindProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetProductBySlug retrieves a single product by its slug.
func (h *ProductHandler) HandleGetProductBySlug(c *fiber.Ctx) error {
	product, err := h.service.FindProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct lists a new product for the calling seller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), identity(c), services.NewProductInput{
		Product: models.Product{
			Name:          req.Name,
			Description:   req.Description,
			CategoryName:  req.CategoryName,
			Price:         req.Price,
			StockQuantity: req.StockQuantity,
			City:          req.City,
			State:         req.State,
		},
		EcoInputs: req.EcoInputs,
	})
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}
