package handler

import (
	"errors"
	"net/http"

	"novella-shop/internal/dto"
	"novella-shop/internal/middleware"
	"novella-shop/internal/model"
	"novella-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "first name, last name and email are required")
	}

	provider := req.PaymentProvider
	if provider == "" {
		provider = model.PaymentProviderStripe
	}

	form := &service.CheckoutForm{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Company:    req.Company,
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		Country:    req.Country,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Phone:      req.Phone,
	}

	result, err := h.checkoutService.PlaceOrder(ctx, middleware.SessionID(c), middleware.UserID(c), form, provider)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrUnsupportedProvider):
			return echo.NewHTTPError(http.StatusBadRequest, "unsupported payment provider")
		default:
			// order already rolled back, cart intact; the client may retry
			return echo.NewHTTPError(http.StatusBadGateway, "error processing payment, please try again")
		}
	}

	return c.JSON(http.StatusOK, result)
}
