package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Chat with the incident assistant
// @Description Forward the conversation to Gemini together with the incident reporting instructions
// @Tags Chat
// @Accept json
// @Produce json
// @Param chat body ChatRequest true "Chat history"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} map[string]string "Missing chatHistory"
// @Failure 500 {object} map[string]string "Gemini error"
// @Router /api/chat/gemini [post]
func (h *Handler) chat(c *gin.Context) {
	var input ChatRequest
	log := h.logger.WithField("method", "chat")

	if err := c.ShouldBindJSON(&input); err != nil || h.validate.Struct(input) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'chatHistory' in request"})
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), DTOToChatHistory(input.ChatHistory))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Response: reply})
}
