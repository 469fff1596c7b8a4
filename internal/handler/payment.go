package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"novella-shop/internal/model"
	"novella-shop/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.paymentService.HandleStripeWebhook(ctx, c.Request().Header.Get("Stripe-Signature"), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWebhook):
			log.Printf("stripe webhook rejected: %v", err)
			return c.NoContent(http.StatusBadRequest)
		case errors.Is(err, service.ErrOrderNotFound):
			log.Printf("stripe webhook for unknown order: %v", err)
			return c.NoContent(http.StatusNotFound)
		default:
			// a 500 lets the provider redeliver; the event-id dedup makes
			// the retry harmless
			log.Printf("stripe webhook processing: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) YookassaWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.paymentService.HandleYookassaWebhook(ctx, body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWebhook), errors.Is(err, service.ErrOrderNotFound):
			log.Printf("yookassa webhook rejected: %v", err)
			return c.NoContent(http.StatusBadRequest)
		default:
			log.Printf("yookassa webhook processing: %v", err)
			return c.NoContent(http.StatusInternalServerError)
		}
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) StripeSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing session_id")
	}

	order, err := h.paymentService.ConfirmStripeReturn(ctx, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

func (h *PaymentHandler) StripeCancel(c echo.Context) error {
	return h.cancelFromQuery(c)
}

func (h *PaymentHandler) YookassaSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDQuery(c)
	if err != nil {
		return err
	}

	order, err := h.paymentService.ResolveYookassaReturn(ctx, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

func (h *PaymentHandler) YookassaCancel(c echo.Context) error {
	return h.cancelFromQuery(c)
}

func (h *PaymentHandler) cancelFromQuery(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDQuery(c)
	if err != nil {
		return err
	}

	order, err := h.paymentService.CancelOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": order.ID,
		"status":   model.OrderStatusCancelled,
	})
}

func orderIDQuery(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.QueryParam("order_id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "missing order_id")
	}
	return uint(id), nil
}
