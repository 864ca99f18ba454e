package handler

import (
	"net/http"
	"strconv"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/service"
	"github.com/gin-gonic/gin"
)

type ChatHandler interface {
	GetConversations(c *gin.Context)
	GetRoomMessages(c *gin.Context)
}

type chatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) ChatHandler {
	return &chatHandler{
		service: service,
	}
}

// GetConversations returns the chat-list snapshot for one user: every
// conversation they participate in with unread count and last message.
func (h *chatHandler) GetConversations(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "userId is required",
		})
		return
	}

	summaries, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get conversations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": summaries,
	})
}

// GetRoomMessages returns one page of a conversation's history.
func (h *chatHandler) GetRoomMessages(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil || chatID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid chat id",
		})
		return
	}

	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid page number",
		})
		return
	}

	kind := model.ConversationKind(c.DefaultQuery("kind", string(model.KindShare)))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid conversation kind",
		})
		return
	}

	msgs, err := h.service.RoomMessages(c.Request.Context(), chatID, kind, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
	})
}
