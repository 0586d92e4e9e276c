package main

import (
	"github.com/friendnet/friendnet_backend/config"
	"github.com/friendnet/friendnet_backend/controllers"
	"github.com/friendnet/friendnet_backend/database"
	"github.com/friendnet/friendnet_backend/docs"
	"github.com/friendnet/friendnet_backend/middleware"
	"github.com/friendnet/friendnet_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           FriendNet API
// @version         1.0
// @description     API Server for the FriendNet social network
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Broadcast bus: in-process by default, redis-backed when REDIS_ADDR
	// is set so events reach connections on other instances.
	var bus websocket.Bus = websocket.NewLocalBus()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		bus = websocket.NewRedisBus(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis broadcast bus")
	}

	directory := websocket.NewDirectory(db, cfg.BaseURL)
	chatStore := websocket.NewChatStore(db, directory)
	groupStore := websocket.NewGroupStore(db, directory)
	chatNotifier := websocket.NewNotifier(bus, websocket.KindChat)
	groupNotifier := websocket.NewNotifier(bus, websocket.KindGroup)

	chatGateway := websocket.NewGateway(cfg.JWTSecret, bus, websocket.KindChat, chatStore, chatStore, directory, cfg.EchoOwnMessage)
	groupGateway := websocket.NewGateway(cfg.JWTSecret, bus, websocket.KindGroup, groupStore, groupStore, directory, cfg.EchoOwnMessage)

	auth := &controllers.AuthController{DB: db, Cfg: cfg}
	profiles := &controllers.ProfileController{DB: db, Cfg: cfg}
	friends := &controllers.FriendController{DB: db}
	posts := &controllers.PostController{DB: db, Cfg: cfg}
	chat := &controllers.ChatController{DB: db, Rooms: chatStore, Store: chatStore, Notifier: chatNotifier, Cfg: cfg}
	groups := &controllers.GroupController{DB: db, Rooms: groupStore, Store: groupStore, Notifier: groupNotifier, Cfg: cfg}

	// Set up Swagger info
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation and metrics
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded files
	router.Static("/"+cfg.UploadDir, cfg.UploadDir)

	// Authentication routes
	public := router.Group("/api")
	{
		public.POST("/register", auth.Register)
		public.POST("/login", auth.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(cfg, db))
	{
		// Profile routes
		api.GET("/profile/me", profiles.Me)
		api.PUT("/profile/me", profiles.UpdateMe)
		api.GET("/people", profiles.People)

		// Friend routes
		api.GET("/friends", friends.ListFriends)
		api.DELETE("/friends/:id", friends.RemoveFriend)
		api.GET("/friend-requests", friends.SentRequests)
		api.POST("/friend-requests", friends.SendRequest)
		api.GET("/friend-requests/pending", friends.PendingRequests)
		api.POST("/friend-requests/:id/respond", friends.Respond)

		// Post routes
		api.GET("/posts", posts.ListPosts)
		api.POST("/posts", posts.CreatePost)
		api.GET("/posts/:id", posts.GetPost)
		api.DELETE("/posts/:id", posts.DeletePost)
		api.POST("/posts/:id/likes", posts.LikePost)
		api.DELETE("/posts/:id/likes", posts.UnlikePost)
		api.GET("/posts/:id/comments", posts.ListComments)
		api.POST("/posts/:id/comments", posts.CreateComment)
		api.DELETE("/posts/:id/comments/:commentID", posts.DeleteComment)
		api.POST("/posts/:id/save", posts.SavePost)
		api.DELETE("/posts/:id/save", posts.UnsavePost)
		api.GET("/saved", posts.ListSaved)

		// Chat routes
		api.GET("/chat", chat.ListRooms)
		api.GET("/chat/:id/messages", chat.ListMessages)
		api.POST("/chat/:id/messages", chat.CreateMessage)

		// Group routes
		api.GET("/groups", groups.ListGroups)
		api.POST("/groups", groups.CreateGroup)
		api.GET("/groups/:id", groups.GetGroup)
		api.PUT("/groups/:id", groups.UpdateGroup)
		api.DELETE("/groups/:id", groups.DeleteGroup)
		api.GET("/groups/:id/members", groups.ListMembers)
		api.POST("/groups/:id/members", groups.AddMember)
		api.DELETE("/groups/:id/members/:userID", groups.RemoveMember)
		api.GET("/groups/:id/messages", groups.ListMessages)
		api.POST("/groups/:id/messages", groups.CreateMessage)
	}

	// WebSocket routes
	router.GET("/ws", chatGateway.HandleConnection)
	router.GET("/ws/group", groupGateway.HandleConnection)

	// Start server
	log.Info().Str("port", cfg.Port).Msg("Server running")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
