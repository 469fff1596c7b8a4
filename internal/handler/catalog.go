package handler

import (
	"net/http"

	"novella-shop/internal/repository"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogHandler(catalogRepo repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{
		catalogRepo: catalogRepo,
	}
}

func (h *CatalogHandler) ListSamples(c echo.Context) error {
	samples, err := h.catalogRepo.ListAvailableSamples(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, samples)
}

func (h *CatalogHandler) ListGifts(c echo.Context) error {
	gifts, err := h.catalogRepo.ListAvailableGifts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gifts)
}
