package approuters

import (
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/configuration"
	"github.com/gin-gonic/gin"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/chats/api")
	{
		chatRoute.GET("/conversations", container.ChatHandler.GetConversations)
		chatRoute.GET("/conversations/:chatId/messages", container.ChatHandler.GetRoomMessages)
	}
}
