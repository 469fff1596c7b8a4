package handler

import (
	"errors"
	"net/http"
	"strconv"

	"novella-shop/internal/dto"
	"novella-shop/internal/middleware"
	"novella-shop/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	cartService  service.CartService
	promoService service.PromoService
}

func NewCartHandler(cartService service.CartService, promoService service.PromoService) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		promoService: promoService,
	}
}

// cartResponse renders the view plus the session promo applied at read time.
func (h *CartHandler) cartResponse(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := middleware.SessionID(c)

	view, err := h.cartService.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	discount, err := h.promoService.CurrentDiscount(ctx, sessionID)
	if err != nil {
		return err
	}

	discounted := view.TotalPrice
	if discount.IsPositive() {
		factor := decimal.NewFromInt(1).Sub(discount.Div(decimal.NewFromInt(100)))
		discounted = view.TotalPrice.Mul(factor).Round(2)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cart":             view,
		"discount":         discount,
		"discounted_price": discounted,
	})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return h.cartResponse(c)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	err := h.cartService.Add(ctx, middleware.SessionID(c), req.PerfumeID, req.CapacityID, req.Quantity, req.Override)
	if err != nil {
		if errors.Is(err, service.ErrVariantUnavailable) {
			return echo.NewHTTPError(http.StatusBadRequest, "requested quantity not available")
		}
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	perfumeID, capacityID, err := lineParams(c)
	if err != nil {
		return err
	}

	if err := h.cartService.Remove(ctx, middleware.SessionID(c), perfumeID, capacityID); err != nil {
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	perfumeID, capacityID, err := lineParams(c)
	if err != nil {
		return err
	}

	var req dto.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	err = h.cartService.UpdateQuantity(ctx, middleware.SessionID(c), perfumeID, capacityID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrVariantUnavailable) {
			return echo.NewHTTPError(http.StatusBadRequest, "requested quantity not available")
		}
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) ToggleSample(c echo.Context) error {
	ctx := c.Request().Context()

	sampleID, err := idParam(c, "sampleID")
	if err != nil {
		return err
	}

	if err := h.cartService.ToggleSample(ctx, middleware.SessionID(c), sampleID); err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot add sample: cart is empty")
		}
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) RemoveSample(c echo.Context) error {
	ctx := c.Request().Context()

	sampleID, err := idParam(c, "sampleID")
	if err != nil {
		return err
	}

	if err := h.cartService.RemoveSample(ctx, middleware.SessionID(c), sampleID); err != nil {
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) ToggleGift(c echo.Context) error {
	ctx := c.Request().Context()

	giftID, err := idParam(c, "giftID")
	if err != nil {
		return err
	}

	if err := h.cartService.ToggleGift(ctx, middleware.SessionID(c), giftID); err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot add gift: cart is empty")
		}
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) RemoveGift(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.RemoveGift(ctx, middleware.SessionID(c)); err != nil {
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) SetSpecialInstructions(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SpecialInstructionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.cartService.SetSpecialInstructions(ctx, middleware.SessionID(c), req.Text); err != nil {
		return err
	}

	return h.cartResponse(c)
}

func (h *CartHandler) ApplyPromo(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ApplyPromoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	_, err := h.promoService.Apply(ctx, middleware.SessionID(c), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPromoCode) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid or inactive promo code")
		}
		return err
	}

	return h.cartResponse(c)
}

func lineParams(c echo.Context) (uint, uint, error) {
	perfumeID, err := idParam(c, "perfumeID")
	if err != nil {
		return 0, 0, err
	}
	capacityID, err := idParam(c, "capacityID")
	if err != nil {
		return 0, 0, err
	}
	return perfumeID, capacityID, nil
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
