package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// EnqueueMessageController accepts a message for background delivery and
// answers 202 with the queue task id.
type EnqueueMessageController struct {
	UC      *usecase.EnqueueMessageUseCase
	Timeout time.Duration
}

func NewEnqueueMessageController(uc *usecase.EnqueueMessageUseCase, timeout time.Duration) *EnqueueMessageController {
	return &EnqueueMessageController{UC: uc, Timeout: timeout}
}

// Handle returns a gin handler that enqueues a background task to send a message
func (h *EnqueueMessageController) Handle() gin.HandlerFunc {
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
		id, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       who.UserID,
			Content:        req.Content,
			Attachment:     req.Attachment,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":       "queued",
			"task_id":      id,
			"conversation": conversationID,
		})
	}
}
