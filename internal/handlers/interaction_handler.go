package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"findhome/internal/metrics"
	"findhome/internal/services"
)

// InteractionHandler serves saves, interests, comments and chat
type InteractionHandler struct {
	interactionService *services.InteractionService
	chatService        *services.ChatService
	metrics            *metrics.Metrics
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(interactionService *services.InteractionService, chatService *services.ChatService, m *metrics.Metrics) *InteractionHandler {
	return &InteractionHandler{
		interactionService: interactionService,
		chatService:        chatService,
		metrics:            m,
	}
}

// ToggleSave saves or unsaves a listing
// POST /listing/:id/save/
func (h *InteractionHandler) ToggleSave(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	saved, err := h.interactionService.ToggleSave(c.Request.Context(), currentUserID(c), listingID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// ShowInterest records that a renter wants to visit a listing
// POST /listing/:id/interest/
func (h *InteractionHandler) ShowInterest(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	created, err := h.interactionService.ShowInterest(c.Request.Context(), currentUserID(c), listingID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": services.MsgInterestDuplicate})
		return
	}

	h.metrics.Record(metrics.EventInterestShown)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": services.MsgInterestShown})
}

// MarkInterestRead marks an interest on the owner's listing as read
// POST /interest/:id/read/
func (h *InteractionHandler) MarkInterestRead(c *gin.Context) {
	interestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	interest, err := h.interactionService.MarkInterestRead(c.Request.Context(), currentUserID(c), interestID)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": interest})
}

// AddComment posts a comment or a reply on a listing
// POST /listing/:id/comment/
func (h *InteractionHandler) AddComment(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input services.CommentInput
	if !bindForm(c, &input) {
		return
	}

	comment, err := h.interactionService.AddComment(c.Request.Context(), currentUserID(c), listingID, input)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if comment == nil {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	h.metrics.Record(metrics.EventCommentPosted)
	c.JSON(http.StatusOK, gin.H{"success": true, "comment_id": comment.ID})
}

// Chat returns the conversation about a listing and marks it read
// GET /listing/:id/chat/
func (h *InteractionHandler) Chat(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	thread, err := h.chatService.Thread(c.Request.Context(), currentUserID(c), listingID, c.Query("renter_id"))
	if err != nil {
		respondError(c, err, listingPath(listingID))
		return
	}
	c.JSON(http.StatusOK, thread)
}

// SendMessage posts a chat message about a listing
// POST /listing/:id/send-message/
func (h *InteractionHandler) SendMessage(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input services.MessageInput
	if !bindForm(c, &input) {
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), currentUserID(c), listingID, input)
	if err != nil {
		respondError(c, err, "")
		return
	}
	if msg == nil {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	h.metrics.Record(metrics.EventMessageSent)
	c.JSON(http.StatusOK, gin.H{"success": true, "message_id": msg.ID})
}
