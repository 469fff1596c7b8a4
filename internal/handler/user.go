package handler

import (
	"errors"
	"net/http"
	"time"

	"novella-shop/internal/dto"
	"novella-shop/internal/middleware"
	"novella-shop/internal/model"
	"novella-shop/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, token, err := h.userService.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyInUse) {
			return echo.NewHTTPError(http.StatusConflict, "email already in use")
		}
		return err
	}

	setAuthCookie(c, token)
	return c.JSON(http.StatusCreated, profileResponse(user))
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, token, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	setAuthCookie(c, token)
	return c.JSON(http.StatusOK, profileResponse(user))
}

func (h *UserHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.GetProfile(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, profileResponse(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.userService.GetProfile(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Company = req.Company
	user.Address1 = req.Address1
	user.Address2 = req.Address2
	user.City = req.City
	user.Country = req.Country
	user.Province = req.Province
	user.PostalCode = req.PostalCode
	user.Phone = req.Phone

	if err := h.userService.UpdateProfile(ctx, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse(user))
}

func (h *UserHandler) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	// unknown addresses get the same answer so the endpoint cannot be
	// used to enumerate accounts
	if _, err := h.userService.RequestPasswordReset(ctx, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "if an account exists for that address, a reset link has been sent",
	})
}

func (h *UserHandler) ConfirmPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Token == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token and new password are required")
	}

	if err := h.userService.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired reset token")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

func setAuthCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func profileResponse(user *model.User) map[string]interface{} {
	return map[string]interface{}{
		"id":          user.ID,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"company":     user.Company,
		"address1":    user.Address1,
		"address2":    user.Address2,
		"city":        user.City,
		"country":     user.Country,
		"province":    user.Province,
		"postal_code": user.PostalCode,
		"phone":       user.Phone,
	}
}
