package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/uptask/uptask-server/internal/config"
	v1 "github.com/uptask/uptask-server/internal/delivery/http/v1"
	"github.com/uptask/uptask-server/internal/mailer"
	"github.com/uptask/uptask-server/internal/realtime"
	"github.com/uptask/uptask-server/internal/services"
	"github.com/uptask/uptask-server/internal/store"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	// The hub's lifetime matches the server's: it is created here,
	// injected into the handlers and closed after shutdown.
	hub := realtime.NewHub(globalLogger)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Frontend.URL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Client-ID"},
		AllowCredentials: true,
	}))
	registerRoutes(router, hub)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}

	hub.Close()
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter, hub *realtime.Hub) {
	cfg := config.Global()

	entityStore := store.NewPostgres(globalLogger, globalPostgresPool)
	smtpMailer := mailer.NewSMTP(globalLogger, cfg.SMTP, cfg.Frontend.URL)

	authService := services.NewAuthService(
		globalLogger,
		entityStore,
		smtpMailer,
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.TokenTTL,
	)
	projectService := services.NewProjectService(globalLogger, entityStore)
	taskService := services.NewTaskService(globalLogger, entityStore)

	v1Handler := v1.New(
		globalLogger,
		authService,
		projectService,
		taskService,
		hub,
		cfg.Frontend.URL,
	)
	router = router.Group("/api/v1")

	usersRouter := router.Group("/users")
	usersRouter.POST("", v1Handler.HandleRegister)
	usersRouter.POST("/login", v1Handler.HandleLogin)
	usersRouter.GET("/confirm/:token", v1Handler.HandleConfirm)
	usersRouter.POST("/forgot-password", v1Handler.HandleForgotPassword)
	usersRouter.GET("/forgot-password/:token", v1Handler.HandleCheckResetToken)
	usersRouter.POST("/forgot-password/:token", v1Handler.HandleResetPassword)
	usersRouter.GET("/profile", v1Handler.HandleAuthMiddleware, v1Handler.HandleProfile)

	projectsRouter := router.Group("/projects", v1Handler.HandleAuthMiddleware)
	projectsRouter.GET("", v1Handler.HandleListProjects)
	projectsRouter.POST("", v1Handler.HandleCreateProject)
	projectsRouter.GET("/:id", v1Handler.HandleGetProject)
	projectsRouter.PUT("/:id", v1Handler.HandleEditProject)
	projectsRouter.DELETE("/:id", v1Handler.HandleDeleteProject)
	projectsRouter.POST("/collaborators", v1Handler.HandleSearchCollaborator)
	projectsRouter.POST("/collaborators/:id", v1Handler.HandleAddCollaborator)
	projectsRouter.POST("/remove-collaborator/:id", v1Handler.HandleRemoveCollaborator)

	tasksRouter := router.Group("/tasks", v1Handler.HandleAuthMiddleware)
	tasksRouter.POST("", v1Handler.HandleCreateTask)
	tasksRouter.GET("/:id", v1Handler.HandleGetTask)
	tasksRouter.PUT("/:id", v1Handler.HandleEditTask)
	tasksRouter.DELETE("/:id", v1Handler.HandleDeleteTask)
	tasksRouter.POST("/:id/state", v1Handler.HandleToggleTask)

	router.GET("/ws", v1Handler.HandleWebsocket)
}
