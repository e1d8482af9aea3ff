package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// SendMessageController handles the synchronous send endpoint (one controller per endpoint).
// The stored message is broadcast to the room before the response is written.
type SendMessageController struct {
	UC      *usecase.SendMessageUseCase
	Timeout time.Duration
}

func NewSendMessageController(uc *usecase.SendMessageUseCase, timeout time.Duration) *SendMessageController {
	return &SendMessageController{UC: uc, Timeout: timeout}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	Content    string  `json:"content"`
	Attachment *string `json:"attachment"`
}

// Handle returns a gin handler that handles sending a message to a conversation
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "id")
		if !ok {
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       who.UserID,
			Content:        req.Content,
			Attachment:     req.Attachment,
			Source:         usecase.SourceREST,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}
