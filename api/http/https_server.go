package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ChatEduca/internal/config"
	"ChatEduca/internal/middleware/access"
	jwtMiddleware "ChatEduca/internal/middleware/jwt"
	"ChatEduca/internal/middleware/ratelimit"
	adminService "ChatEduca/internal/modules/admin/application/service"
	adminPersistence "ChatEduca/internal/modules/admin/infrastructure/persistence"
	adminHandler "ChatEduca/internal/modules/admin/interface/http"
	chatService "ChatEduca/internal/modules/chat/application/service"
	chatPersistence "ChatEduca/internal/modules/chat/infrastructure/persistence"
	"ChatEduca/internal/modules/chat/infrastructure/rag"
	chatHandler "ChatEduca/internal/modules/chat/interface/http"
	parentService "ChatEduca/internal/modules/parent/application/service"
	parentPersistence "ChatEduca/internal/modules/parent/infrastructure/persistence"
	parentHandler "ChatEduca/internal/modules/parent/interface/http"
	systemService "ChatEduca/internal/modules/system/application/service"
	systemHandler "ChatEduca/internal/modules/system/interface/http"
	"ChatEduca/internal/modules/user/application/service"
	"ChatEduca/internal/modules/user/domain/entity"
	"ChatEduca/internal/modules/user/infrastructure/persistence"
	userHandler "ChatEduca/internal/modules/user/interface/http"
	"ChatEduca/pkg/back"
	"ChatEduca/pkg/metrics"
	"ChatEduca/pkg/mq"
	"ChatEduca/pkg/redis"
	"ChatEduca/pkg/ssl"
	"ChatEduca/pkg/util/myjwt"
	"ChatEduca/pkg/xerr"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the process wide handles built by the serve command. Redis,
// Publisher and Metrics may be nil.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher mq.Publisher
	Metrics   *metrics.Metrics
}

// NewRouter wires every module and returns the engine.
func NewRouter(deps Deps) (*gin.Engine, error) {
	conf := deps.Config
	back.Development = conf.IsDevelopment()

	tokens, err := myjwt.NewManager(conf.JwtConfig.Key, conf.JwtConfig.Issuer, conf.JwtConfig.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("jwt manager: %w", err)
	}

	GE := gin.New()
	GE.Use(gin.Recovery())
	GE.Use(access.Log(deps.Metrics))
	GE.Use(ssl.SecureHeaders(conf.MainConfig.Host, conf.MainConfig.Port, conf.SSLRedirect, conf.IsDevelopment()))
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = conf.Origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", access.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{access.HeaderRequestID, "X-Session-ID"}
	GE.Use(cors.New(corsConfig))

	// repositories
	userRepo := persistence.NewUserRepository(deps.DB)
	linkRepo := persistence.NewParentStudentRepository(deps.DB)
	sessionRepo := chatPersistence.NewSessionRepository(deps.DB)
	messageRepo := chatPersistence.NewMessageRepository(deps.DB)
	memoryRepo := parentPersistence.NewChatMemoryRepository(deps.DB)
	logRepo := adminPersistence.NewLogRepository(deps.DB)
	statsRepo := adminPersistence.NewStatsRepository(deps.DB)

	// services
	ragClient := rag.NewClient(conf.RagConfig.BaseURL, time.Duration(conf.RagConfig.TimeoutSeconds)*time.Second)
	audit := adminService.NewLogService(logRepo)
	authSvc := service.NewAuthService(userRepo, tokens, audit)
	userSvc := service.NewUserService(userRepo, audit)
	chatSvc := chatService.NewChatService(sessionRepo, messageRepo, ragClient, chatService.Options{
		Audit:        audit,
		Turns:        chatService.NewTurnPublisher(deps.Publisher, conf.TurnTopic),
		Metrics:      deps.Metrics,
		ExposeErrors: conf.IsDevelopment(),
	})
	parentSvc := parentService.NewParentService(userRepo, linkRepo, memoryRepo, audit)
	adminSvc := adminService.NewAdminService(statsRepo, logRepo)
	systemSvc := systemService.NewSystemService(conf.Environment, deps.Redis != nil, probes(deps, ragClient)...)

	// handlers
	authH := userHandler.NewAuthHandler(authSvc)
	userH := userHandler.NewUserHandler(userSvc)
	chatH := chatHandler.NewChatHandler(chatSvc)
	parentH := parentHandler.NewParentHandler(parentSvc, chatSvc)
	adminH := adminHandler.NewAdminHandler(adminSvc)
	systemH := systemHandler.NewSystemHandler(systemSvc)

	GE.GET("/health", systemH.Liveness)
	if deps.Metrics != nil {
		GE.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	var counter ratelimit.Counter
	if deps.Redis != nil {
		counter = deps.Redis
	}
	api := GE.Group("/api")
	api.Use(ratelimit.New(ratelimit.Config{
		Window:      time.Duration(conf.WindowMs) * time.Millisecond,
		MaxRequests: conf.MaxRequests,
	}, counter))

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.GET("/chat/health", chatH.Health)
	api.GET("/system/status", systemH.Status)
	api.GET("/system/config", systemH.Config)

	authed := api.Group("/")
	authed.Use(jwtMiddleware.Auth(authSvc))
	authed.GET("/auth/me", authH.Me)
	authed.POST("/auth/refresh", authH.Refresh)

	authed.POST("/chat", chatH.Chat)
	authed.POST("/chat/streaming", chatH.Stream)
	authed.GET("/chat/history", chatH.History)
	authed.DELETE("/chat/clear", chatH.Clear)

	authed.GET("/users", userH.List)
	authed.GET("/users/:id", userH.Get)
	authed.PUT("/users/:id", userH.Update)
	authed.DELETE("/users/:id", userH.Delete)

	parent := authed.Group("/parent")
	parent.Use(jwtMiddleware.RequireRoles(entity.RoleParent))
	parent.GET("/students", parentH.Students)
	parent.GET("/stats/:studentId", parentH.Stats)
	parent.GET("/history/:studentId", parentH.History)
	parent.POST("/report/:studentId", parentH.Report)

	admin := authed.Group("/admin")
	admin.Use(jwtMiddleware.RequireRoles(entity.RoleAdmin))
	admin.GET("/stats", adminH.Stats)
	admin.GET("/logs", adminH.Logs)
	admin.POST("/links", parentH.Link)

	GE.NoRoute(func(c *gin.Context) {
		back.Fail(c, xerr.New(http.StatusNotFound, xerr.CodeNotFound, "Rota não encontrada"))
	})
	return GE, nil
}

func probes(deps Deps, upstream *rag.Client) []systemService.Probe {
	out := []systemService.Probe{
		{Name: "Backend FastAPI", Check: func(ctx context.Context) error {
			_, err := upstream.Health(ctx)
			return err
		}},
		{Name: "Database", Check: func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
	}
	if deps.Redis != nil {
		out = append(out, systemService.Probe{Name: "Redis", Check: deps.Redis.Ping})
	}
	return out
}
