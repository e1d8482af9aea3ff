package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go-chatline/internal/config"
	"go-chatline/internal/infrastructure/auth"
	cport "go-chatline/internal/infrastructure/cache/port"
	"go-chatline/internal/infrastructure/realtime"
	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/gateway"
	"go-chatline/internal/pkg/chat/application/usecase"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
	"go-chatline/internal/pkg/chat/presentation/controller"
)

// Deps are the collaborators the chat routes are built from.
type Deps struct {
	Repo     repository.ChatRepository
	Bus      usecase.Publisher
	Registry *realtime.Registry
	Cache    cport.Cache
	// Enqueuer is optional; without it the async send route is not mounted.
	Enqueuer usecase.MessageEnqueuer
	JWT      *auth.JWT
	Config   *config.Config
	Log      zerolog.Logger
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// and the websocket endpoint under ws. It constructs per-endpoint controllers
// and binds them directly to routes.
func RegisterRoutes(api *gin.RouterGroup, ws *gin.RouterGroup, d Deps) {
	cfg := d.Config
	timeout := cfg.RequestTimeout

	guard := usecase.NewAuthorizationGuard(d.Repo, d.Repo)
	send := usecase.NewSendMessageUseCase(d.Repo, guard, usecase.NewBroadcastMessageUseCase(d.Bus), d.Log)
	resolver := usecase.NewResolveConversationUseCase(d.Repo, d.Cache, cfg.CacheTTL)
	gw := gateway.New(usecase.NewJoinConversationUseCase(resolver, guard), send, d.Registry, d.Log, gateway.WithMessageRate(cfg.WSMessagesPerSecond))

	socketCtl := controller.NewChatSocketController(gw, d.JWT, cfg.AllowedOrigins, realtime.ConnectionOptions{
		SendBuffer: cfg.WSSendBuffer,
		ReadLimit:  cfg.WSReadLimit,
		PongWait:   cfg.WSPongWait,
	}, 5*time.Second, d.Log)

	// GET /ws/chat/:room -> websocket session for one conversation (id or group name)
	ws.GET("/chat/:room", socketCtl.Handle())

	api.Use(auth.Middleware(d.JWT))

	conversations := api.Group("/conversations")
	conversations.GET("", controller.NewListConversationsController(usecase.NewListConversationsUseCase(d.Repo), "", timeout).Handle())
	conversations.GET("/by-type", controller.NewListConversationsController(usecase.NewListConversationsUseCase(d.Repo), chat.ConversationDirect, timeout).Handle())
	conversations.GET("/unread-count", controller.NewUnreadCountController(usecase.NewUnreadCountUseCase(d.Repo), timeout).Handle())
	conversations.POST("/create-group", controller.NewCreateGroupController(usecase.NewCreateGroupUseCase(d.Repo), timeout).Handle())
	conversations.POST("/create-direct", controller.NewCreateDirectController(usecase.NewCreateDirectUseCase(d.Repo, guard), timeout).Handle())
	conversations.POST("/create-direct-by-username", controller.NewCreateDirectController(usecase.NewCreateDirectByUsernameUseCase(d.Repo, guard), timeout).Handle())
	conversations.GET("/:id/messages", controller.NewGetMessageController(usecase.NewGetMessageUseCase(d.Repo, guard, cfg.MessageHistoryLimit), timeout).Handle())
	conversations.GET("/:id/members", controller.NewListParticipantsController(usecase.NewListParticipantsUseCase(d.Repo, guard), timeout).Handle())
	conversations.POST("/:id/send", controller.NewSendMessageController(send, timeout).Handle())
	conversations.POST("/:id/join", controller.NewJoinGroupController(usecase.NewJoinGroupUseCase(d.Repo, guard), timeout).Handle())
	conversations.POST("/:id/mark-read", controller.NewMarkReadController(usecase.NewMarkReadUseCase(d.Repo, guard), timeout).Handle())
	if d.Enqueuer != nil {
		conversations.POST("/:id/send-async", controller.NewEnqueueMessageController(usecase.NewEnqueueMessageUseCase(guard, d.Enqueuer), timeout).Handle())
	}

	contacts := api.Group("/contacts")
	respondContact := usecase.NewRespondContactRequestUseCase(d.Repo)
	listContacts := usecase.NewListContactsUseCase(d.Repo)
	contacts.POST("/send-request", controller.NewContactRequestController(usecase.NewSendContactRequestUseCase(d.Repo), timeout).Handle())
	contacts.GET("/accepted", controller.NewListContactsController(listContacts, false, timeout).Handle())
	contacts.GET("/pending", controller.NewListContactsController(listContacts, true, timeout).Handle())
	contacts.POST("/:id/accept", controller.NewRespondContactController(respondContact, chat.ContactAccepted, timeout).Handle())
	// declining a request blocks the sender
	contacts.POST("/:id/decline", controller.NewRespondContactController(respondContact, chat.ContactBlocked, timeout).Handle())
	contacts.POST("/:id/block", controller.NewRespondContactController(respondContact, chat.ContactBlocked, timeout).Handle())
	contacts.DELETE("/:id/delete", controller.NewDeleteContactController(usecase.NewDeleteContactUseCase(d.Repo), timeout).Handle())

	invitations := api.Group("/group-invitations")
	respondInvitation := usecase.NewRespondInvitationUseCase(d.Repo)
	invitations.POST("/invite", controller.NewInviteController(usecase.NewInviteToGroupUseCase(d.Repo, guard), timeout).Handle())
	invitations.GET("/pending", controller.NewListInvitationsController(usecase.NewListInvitationsUseCase(d.Repo), timeout).Handle())
	invitations.POST("/:id/accept", controller.NewRespondInvitationController(respondInvitation, chat.InvitationAccepted, timeout).Handle())
	invitations.POST("/:id/decline", controller.NewRespondInvitationController(respondInvitation, chat.InvitationDeclined, timeout).Handle())

	api.GET("/users/all", controller.NewListUsersController(usecase.NewListUsersUseCase(d.Repo), timeout).Handle())
}
