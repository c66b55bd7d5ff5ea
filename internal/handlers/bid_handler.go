package handlers

import (
	"log"

	"tanam/internal/models"
	"tanam/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BidHandler handles HTTP requests for bids.
type BidHandler struct {
	service  *services.BidService
	validate *validator.Validate
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(service *services.BidService) *BidHandler {
	return &BidHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the bid routes with the Fiber app.
func (h *BidHandler) RegisterRoutes(router fiber.Router) {
	bidRoutes := router.Group("/bids")
	bidRoutes.Get("/:id", h.HandleGetBid)
	bidRoutes.Post("/", h.HandleCreateBid)
	bidRoutes.Patch("/:id", h.HandleUpdateBid)
}

// bidUpdateRequest is the field-delta shape covering the bid operations:
// product add/remove, price+message, and finalize via the status field.
type bidUpdateRequest struct {
	AddProductID    string   `json:"add_product_id" validate:"omitempty"`
	RemoveProductID string   `json:"remove_product_id" validate:"omitempty"`
	Price           *int64   `json:"price" validate:"omitempty,gt=0"`
	VendorMessage   string   `json:"vendor_message" validate:"omitempty,max=2000"`
	ReferenceImages []string `json:"reference_images" validate:"omitempty,max=5"`
	Status          string   `json:"status" validate:"omitempty,oneof=bidded completed"`
}

// HandleGetBid retrieves a single bid by its ID.
func (h *BidHandler) HandleGetBid(c *fiber.Ctx) error {
	bidID := c.Params("id")
	bid, err := h.service.GetBidByID(bidID)
	if err != nil {
		log.Printf("Error getting bid %s: %v", bidID, err)
		return errorJSON(c, "Could not retrieve bid", err)
	}
	return c.JSON(bid)
}

// HandleCreateBid creates a new bid in pending state.
func (h *BidHandler) HandleCreateBid(c *fiber.Ctx) error {
	var bid models.Bid
	if err := c.BodyParser(&bid); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if bid.CustomerID == "" || bid.VendorID == "" || bid.ConversationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "customer_id, vendor_id and conversation_id are required.",
		})
	}

	if err := h.service.CreateBid(&bid); err != nil {
		log.Printf("Error creating bid: %v", err)
		return errorJSON(c, "Could not create bid", err)
	}
	return c.Status(fiber.StatusCreated).JSON(bid)
}

// HandleUpdateBid applies a field delta to a bid. Product adds/removes,
// price+message updates and finalization all come through this endpoint.
func (h *BidHandler) HandleUpdateBid(c *fiber.Ctx) error {
	bidID := c.Params("id")

	var req bidUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid bid update",
			"error":   err.Error(),
		})
	}

	var (
		bid *models.Bid
		err error
	)
	switch {
	case req.AddProductID != "":
		bid, err = h.service.AddProduct(bidID, req.AddProductID)
	case req.RemoveProductID != "":
		bid, err = h.service.RemoveProduct(bidID, req.RemoveProductID)
	case req.Price != nil:
		bid, err = h.service.SetPriceAndMessage(bidID, *req.Price, req.VendorMessage, req.ReferenceImages)
	case req.Status == string(models.BidBidded):
		bid, err = h.service.Finalize(bidID)
	case req.Status == string(models.BidCompleted):
		if err = h.service.MarkCompleted(bidID); err == nil {
			bid, err = h.service.GetBidByID(bidID)
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bid update must carry a product delta, a price, or a status.",
		})
	}

	if err != nil {
		log.Printf("Error updating bid %s: %v", bidID, err)
		return errorJSON(c, "Could not update bid", err)
	}
	return c.JSON(bid)
}
