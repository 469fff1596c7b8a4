package server

import (
	"context"
	"net/http"

	"novella-shop/internal/handler"
	appmw "novella-shop/internal/middleware"
	"novella-shop/internal/repository"
	"novella-shop/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	paymentHandler  *handler.PaymentHandler
	userHandler     *handler.UserHandler
	catalogHandler  *handler.CatalogHandler
	userService     service.UserService
}

func NewServer(
	cartService service.CartService,
	promoService service.PromoService,
	checkoutService service.CheckoutService,
	paymentService service.PaymentService,
	userService service.UserService,
	catalogRepo repository.CatalogRepository,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmw.SessionMiddleware())

	s := &Server{
		echo:            e,
		cartHandler:     handler.NewCartHandler(cartService, promoService),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		paymentHandler:  handler.NewPaymentHandler(paymentService),
		userHandler:     handler.NewUserHandler(userService),
		catalogHandler:  handler.NewCatalogHandler(catalogRepo),
		userService:     userService,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- catalog --------
	api.GET("/samples", s.catalogHandler.ListSamples)
	api.GET("/gifts", s.catalogHandler.ListGifts)

	// -------- cart --------
	cart := api.Group("/cart")
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PUT("/items/:perfumeID/:capacityID", s.cartHandler.UpdateQuantity)
	cart.DELETE("/items/:perfumeID/:capacityID", s.cartHandler.RemoveItem)
	cart.POST("/samples/:sampleID", s.cartHandler.ToggleSample)
	cart.DELETE("/samples/:sampleID", s.cartHandler.RemoveSample)
	cart.POST("/gift/:giftID", s.cartHandler.ToggleGift)
	cart.DELETE("/gift", s.cartHandler.RemoveGift)
	cart.PUT("/instructions", s.cartHandler.SetSpecialInstructions)
	cart.POST("/promo", s.cartHandler.ApplyPromo)

	// -------- checkout --------
	api.POST("/checkout", s.checkoutHandler.Checkout, appmw.OptionalAuthMiddleware(s.userService))

	// -------- users --------
	users := api.Group("/users")
	users.POST("/register", s.userHandler.Register)
	users.POST("/login", s.userHandler.Login)
	users.POST("/logout", s.userHandler.Logout)
	users.POST("/password-reset", s.userHandler.RequestPasswordReset)
	users.POST("/password-reset/confirm", s.userHandler.ConfirmPasswordReset)

	profile := users.Group("/me", appmw.AuthMiddleware(s.userService))
	profile.GET("", s.userHandler.GetProfile)
	profile.PUT("", s.userHandler.UpdateProfile)

	// -------- payment webhooks / callbacks --------
	// outside /api: these paths are what the providers get as webhook and
	// redirect targets
	payment := s.echo.Group("/payment")
	payment.POST("/stripe/webhook", s.paymentHandler.StripeWebhook)
	payment.GET("/stripe/success", s.paymentHandler.StripeSuccess)
	payment.GET("/stripe/cancel", s.paymentHandler.StripeCancel)
	payment.POST("/yookassa/webhook", s.paymentHandler.YookassaWebhook)
	payment.GET("/yookassa/success", s.paymentHandler.YookassaSuccess)
	payment.GET("/yookassa/cancel", s.paymentHandler.YookassaCancel)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
