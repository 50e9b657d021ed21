package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	md "github.com/N-Srikar/Athena/pkg/middleware"
	"github.com/N-Srikar/Athena/pkg/validate"
	_ "github.com/N-Srikar/Athena/swagger"
)

type Handler struct {
	borrowSvc  BorrowService
	catalogSvc CatalogService
	authSvc    AuthService
	statsSvc   StatsService
	log        *zap.Logger
}

func New(borrowSvc BorrowService, catalogSvc CatalogService, authSvc AuthService, statsSvc StatsService, log *zap.Logger) *Handler {
	return &Handler{
		borrowSvc:  borrowSvc,
		catalogSvc: catalogSvc,
		authSvc:    authSvc,
		statsSvc:   statsSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("", md.JwtAuthentication)

	authed.GET("/books", h.GetBooks)
	authed.GET("/books/:bookUid", h.GetBook)
	authed.GET("/books/:bookUid/available", h.CheckAvailable)

	librarian := authed.Group("", md.RequireRole("LIBRARIAN", "ADMIN"))
	librarian.POST("/books", h.CreateBook)
	librarian.PATCH("/books/:bookUid", h.UpdateBook)
	librarian.DELETE("/books/:bookUid", h.DeleteBook)

	authed.POST("/borrows", h.RequestBorrow, md.RequireRole("MEMBER"))
	authed.GET("/borrows", h.GetBorrows)
	authed.GET("/borrows/due", h.GetDueBorrows, md.RequireRole("MEMBER"))

	librarian.GET("/borrows/overdue", h.GetOverdueBorrows)
	librarian.POST("/borrows/:recordUid/approve", h.ApproveBorrow)
	librarian.POST("/borrows/:recordUid/reject", h.RejectBorrow)
	librarian.POST("/borrows/:recordUid/return", h.ReturnBorrow)
	librarian.POST("/borrows/:recordUid/fine/pay", h.MarkFinePaid)
	librarian.GET("/stats", h.Stats)

	admin := authed.Group("/admin", md.RequireRole("ADMIN"))
	admin.POST("/librarians", h.CreateLibrarian)
	admin.GET("/librarians", h.GetLibrarians)
	admin.PATCH("/librarians/:id", h.UpdateLibrarian)
	admin.DELETE("/librarians/:id", h.RemoveLibrarian)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
