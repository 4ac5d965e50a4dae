package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	"github.com/demodeck-hq/demodeck_api/services/handlers"
	"github.com/demodeck-hq/demodeck_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc      *AuthService
	demoSvc      *DemoService
	shareSvc     *ShareLinkService
	viewSvc      *ViewTrackingService
	analyticsSvc *AnalyticsService
	mediaSvc     *MediaService
	rateLimitSvc *RateLimitService
	monitorSvc   *MonitoringService

	authHandler      *handlers.AuthHandler
	demoHandler      *handlers.DemoHandler
	shareHandler     *handlers.ShareHandler
	viewHandler      *handlers.ViewHandler
	analyticsHandler *handlers.AnalyticsHandler
	mediaHandler     *handlers.MediaHandler

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.demoSvc = svc.Service(DEMO_SVC).(*DemoService)
	svc.shareSvc = svc.Service(SHARE_LINK_SVC).(*ShareLinkService)
	svc.viewSvc = svc.Service(VIEW_SVC).(*ViewTrackingService)
	svc.analyticsSvc = svc.Service(ANALYTICS_SVC).(*AnalyticsService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.authHandler = handlers.NewAuthHandler(svc.authSvc)
	svc.demoHandler = handlers.NewDemoHandler(svc.demoSvc)
	svc.shareHandler = handlers.NewShareHandler(svc.shareSvc, svc.demoSvc, svc.viewSvc)
	svc.viewHandler = handlers.NewViewHandler(svc.viewSvc)
	svc.analyticsHandler = handlers.NewAnalyticsHandler(svc.analyticsSvc)
	svc.mediaHandler = handlers.NewMediaHandler(svc.mediaSvc)

	app := fiber.New(fiber.Config{
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(svc.monitorSvc))
	app.Use(svc.rateLimitSvc.IPRateLimit())

	svc.registerRoutes(app)

	svc.server = app

	log.Printf("HTTP service listening on :%v", svc.port)
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Auth
	v1.Post("/register", svc.rateLimitSvc.RateLimit("register"), svc.authHandler.Register)
	v1.Post("/login", svc.rateLimitSvc.RateLimit("login"), svc.authHandler.Login)

	// Demos and steps
	demos := v1.Group("/demos")
	demos.Get("/public", svc.demoHandler.ListPublicDemos)
	demos.Post("/", svc.authSvc.RequiredAuth(), svc.demoHandler.CreateDemo)
	demos.Get("/", svc.authSvc.RequiredAuth(), svc.demoHandler.ListDemos)
	demos.Get("/:demoId", svc.authSvc.OptionalAuth(), svc.demoHandler.GetDemo)
	demos.Put("/:demoId", svc.authSvc.RequiredAuth(), svc.demoHandler.UpdateDemo)
	demos.Delete("/:demoId", svc.authSvc.RequiredAuth(), svc.demoHandler.DeleteDemo)
	demos.Post("/:demoId/steps", svc.authSvc.RequiredAuth(), svc.demoHandler.AddStep)
	demos.Put("/:demoId/steps/:stepId", svc.authSvc.RequiredAuth(), svc.demoHandler.UpdateStep)
	demos.Delete("/:demoId/steps/:stepId", svc.authSvc.RequiredAuth(), svc.demoHandler.DeleteStep)
	demos.Post("/:demoId/steps/:stepId/image",
		svc.authSvc.RequiredAuth(),
		svc.rateLimitSvc.RateLimit("media_upload"),
		svc.mediaHandler.UploadStepImage)

	// Share links
	demos.Post("/:demoId/share",
		svc.authSvc.RequiredAuth(),
		svc.rateLimitSvc.RateLimit("share_link_create"),
		svc.shareHandler.CreateShareLink)
	demos.Get("/:demoId/share", svc.authSvc.RequiredAuth(), svc.shareHandler.ListShareLinks)
	v1.Delete("/share-links/:linkId", svc.authSvc.RequiredAuth(), svc.shareHandler.DeactivateShareLink)

	// Shared playback: the only viewer-facing entry point. Rate
	// limited per IP so tokens cannot be brute forced.
	v1.Get("/shared/:token", svc.rateLimitSvc.RateLimit("shared_view"), svc.shareHandler.ViewSharedDemo)

	// Session tracking
	v1.Post("/views/:sessionId/progress", svc.viewHandler.UpdateProgress)
	v1.Post("/views/:sessionId/close", svc.viewHandler.CloseSession)

	// Analytics
	demos.Get("/:demoId/analytics", svc.authSvc.RequiredAuth(), svc.analyticsHandler.GetDemoAnalytics)
	v1.Get("/analytics", svc.authSvc.RequiredAuth(), svc.analyticsHandler.GetUserAnalytics)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
