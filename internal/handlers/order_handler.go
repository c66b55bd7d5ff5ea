package handlers

import (
	"errors"
	"log"

	"tanam/internal/models"
	"tanam/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service    *services.OrderService
	reconciler *services.Reconciler
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, reconciler *services.Reconciler) *OrderHandler {
	return &OrderHandler{
		service:    service,
		reconciler: reconciler,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", h.HandleAdvanceStatus)
	orderRoutes.Post("/:id/cancel", h.HandleCancel)
}

// HandleGetOrder retrieves an order. Opening the detail view implicitly runs
// payment reconciliation, at most once per view session.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.reconciler.OnOrderView(c.Context(), viewSessionID(c), orderID)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		return errorJSON(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order in created state.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var order models.Order
	if err := c.BodyParser(&order); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if order.OrderNo == "" || order.VendorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "order_no and vendor_id are required.",
		})
	}

	if err := h.service.CreateOrder(&order); err != nil {
		log.Printf("Error creating order: %v", err)
		return errorJSON(c, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleAdvanceStatus moves an order one step along the forward path.
func (h *OrderHandler) HandleAdvanceStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required.",
		})
	}

	order, err := h.service.AdvanceStatus(orderID, req.Status)
	if err != nil {
		log.Printf("Error advancing order %s to %s: %v", orderID, req.Status, err)
		return errorJSON(c, "Could not update order status", err)
	}
	return c.JSON(order)
}

// HandleCancel cancels an order through the payment provider.
func (h *OrderHandler) HandleCancel(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.service.CancelPayment(c.Context(), orderID, req.Reason)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		if errors.Is(err, services.ErrCancellationFailed) {
			// The provider answered; let callers tell an explicit denial
			// apart from a transport failure.
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":          "Could not cancel order",
				"error":            err.Error(),
				"success":          result.Success,
				"api_call_success": result.APICallSuccess,
			})
		}
		return errorJSON(c, "Could not cancel order", err)
	}
	return c.JSON(result)
}

// viewSessionID identifies an order-detail view session. Clients send an
// explicit header; otherwise the authenticated actor stands in for it.
func viewSessionID(c *fiber.Ctx) string {
	if sid := c.Get("X-View-Session"); sid != "" {
		return sid
	}
	if actorID, ok := c.Locals("actor_id").(string); ok && actorID != "" {
		return actorID
	}
	return c.IP()
}
