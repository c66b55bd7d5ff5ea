package handlers

import (
	"log"

	"tanam/internal/models"
	"tanam/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ConversationHandler exposes the transcript store over HTTP.
type ConversationHandler struct {
	repo     repositories.ConversationRepository
	validate *validator.Validate
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(repo repositories.ConversationRepository) *ConversationHandler {
	return &ConversationHandler{
		repo:     repo,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the conversation routes with the Fiber app.
func (h *ConversationHandler) RegisterRoutes(router fiber.Router) {
	convRoutes := router.Group("/conversations")
	convRoutes.Get("/:id", h.HandleGetConversation)
	convRoutes.Post("/:id/messages", h.HandleAppendMessage)
	convRoutes.Put("/:id/messages", h.HandleReplaceMessages)
}

type messageRequest struct {
	Role    models.MessageRole `json:"role" validate:"required,oneof=customer vendor system"`
	Content string             `json:"content" validate:"required"`
	Images  []string           `json:"images" validate:"omitempty,max=5"`
}

// HandleGetConversation returns the transcript ordered by timestamp.
func (h *ConversationHandler) HandleGetConversation(c *fiber.Ctx) error {
	conversationID := c.Params("id")
	conv, err := h.repo.Get(conversationID)
	if err != nil {
		log.Printf("Error getting conversation %s: %v", conversationID, err)
		return errorJSON(c, "Could not retrieve conversation", err)
	}
	return c.JSON(conv)
}

// HandleAppendMessage appends one message to the transcript.
func (h *ConversationHandler) HandleAppendMessage(c *fiber.Ctx) error {
	conversationID := c.Params("id")

	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid message",
			"error":   err.Error(),
		})
	}

	msg := models.Message{
		Role:    req.Role,
		Content: req.Content,
		Images:  req.Images,
	}
	if err := h.repo.Append(conversationID, msg); err != nil {
		log.Printf("Error appending to conversation %s: %v", conversationID, err)
		return errorJSON(c, "Could not append message", err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// HandleReplaceMessages overwrites the whole transcript. Kept for admin-style
// repairs; concurrent producers should use the append endpoint.
func (h *ConversationHandler) HandleReplaceMessages(c *fiber.Ctx) error {
	conversationID := c.Params("id")

	var msgs []models.Message
	if err := c.BodyParser(&msgs); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.repo.Replace(conversationID, msgs); err != nil {
		log.Printf("Error replacing conversation %s: %v", conversationID, err)
		return errorJSON(c, "Could not replace messages", err)
	}
	return c.SendStatus(fiber.StatusOK)
}
