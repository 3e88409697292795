package router // package router defines how HTTP routes are registered for the API

import (
	"fmt"      // body limit formatting
	"log/slog" // request logging
	"net/http" // http.Handler for the CORS wrapper

	"github.com/labstack/echo/v4"                           // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"         // stock echo middleware (request id, recover, body limit)
	"github.com/prometheus/client_golang/prometheus/promhttp" // /metrics exposition
	"github.com/redis/go-redis/v9"                          // shared client for rate limit and cache
	"github.com/rs/cors"                                    // CORS wrapper around the echo handler

	"github.com/iliyamo/skillswap/internal/config"     // app, rate limit and cache configuration
	"github.com/iliyamo/skillswap/internal/handler"    // import the handlers that implement each endpoint
	"github.com/iliyamo/skillswap/internal/middleware" // auth, ownership, rate limit, cache and observability middleware
	"github.com/iliyamo/skillswap/internal/model"      // skill kinds
	"github.com/iliyamo/skillswap/internal/service"    // services behind the handlers
)

// Deps is everything New needs to build the HTTP surface. Redis may be
// nil; rate limiting then stays in-process and caching is off.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
	Logger    *slog.Logger

	Auth   *service.AuthService
	Users  *service.UserService
	Skills *service.SkillService
	Swaps  *service.SwapService
}

// New builds the echo instance with every route and middleware in place.
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.Tracing())
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.BodyLimit(bodyLimit(d.Config.AvatarMaxBytes)))
	// A valid bearer token identifies the caller; no token means anonymous.
	e.Use(middleware.OptionalAuth(d.Config.JWTSecret))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))
	e.Use(middleware.InvalidateCache(d.Cache, d.Redis))
	e.Use(middleware.NewRedisCache(d.Cache, d.Redis))

	RegisterRoutes(e, d.Config.UploadDir)
	RegisterAuth(e, handler.NewAuthHandler(d.Auth, d.Users))
	RegisterUsers(e, handler.NewUserHandler(d.Users))
	RegisterSkills(e, handler.NewSkillHandler(d.Skills))
	RegisterSwaps(e, handler.NewSwapHandler(d.Swaps))
	return e
}

// WithCORS wraps h so browsers on origins may call the API.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Retry-After", "X-Cache"},
		AllowCredentials: true,
	}).Handler(h)
}

// bodyLimit leaves room for multipart framing around the largest avatar.
func bodyLimit(avatarMax int64) string {
	if avatarMax <= 0 {
		avatarMax = service.DefaultAvatarMaxBytes
	}
	return fmt.Sprintf("%dK", (avatarMax+(1<<20))/1024)
}

// RegisterRoutes registers the health checks, metrics and uploaded files.
// uploadDir may be empty when avatars are not stored on local disk.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/test", handler.Ping)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if uploadDir != "" {
		// Browsers must take the served Content-Type as final.
		g := e.Group("/uploads", echomw.SecureWithConfig(echomw.SecureConfig{
			ContentTypeNosniff:    "nosniff",
			ContentSecurityPolicy: "default-src 'none'; sandbox",
		}))
		g.Static("/", uploadDir)
	}
}

// RegisterAuth registers the sign up, sign in and session endpoints under
// /api/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.POST("/refresh", a.Refresh)
	g.GET("/session", a.Session)
	g.GET("/me/:userId", a.Me, middleware.RequireSelf("userId"))
}

// RegisterUsers registers profile endpoints. Routes naming a user in the
// path reject bearer tokens of other users.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler) {
	g := e.Group("/api/users")
	self := middleware.RequireSelf("userId")
	g.POST("/register", u.Register)
	g.GET("/public", u.Public)
	g.GET("/profile/:userId", u.Profile)
	g.PUT("/profile/:userId", u.UpdateProfile, self)
	g.POST("/upload-avatar/:userId", u.UploadAvatar, self)
}

// RegisterSkills registers both skill tables. Static segments (search,
// user, category) win over :skillId in echo's router.
func RegisterSkills(e *echo.Echo, s *handler.SkillHandler) {
	g := e.Group("/api/skills")
	g.GET("/categories", s.Categories)
	g.GET("/search", s.Search(model.SkillOffered))
	g.GET("/category/:category", s.ByCategory)

	for _, kind := range []model.SkillKind{model.SkillOffered, model.SkillWanted} {
		prefix := "/" + string(kind)
		g.POST(prefix, s.Add(kind))
		g.GET(prefix, s.List(kind))
		g.GET(prefix+"/user/:userId", s.ListByUser(kind))
		g.DELETE(prefix+"/:skillId", s.Delete(kind))
	}
	g.GET("/wanted/search", s.Search(model.SkillWanted))
}

func RegisterSwaps(e *echo.Echo, s *handler.SwapHandler) {
	g := e.Group("/api/swaps")
	g.POST("", s.Create)
	g.GET("/user/:userId", s.ListByUser, middleware.RequireSelf("userId"))
	g.PUT("/:swapId/status", s.UpdateStatus)
}
