package petstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	petmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
)

// CategoryAPI serves the category catalog. Writes are staff only.
type CategoryAPI struct {
	service petports.Service
}

func NewCategoryAPI(service petports.Service) CategoryAPI {
	return CategoryAPI{service: service}
}

// Get /categories/
func (api *CategoryAPI) ListCategories(c *gin.Context) {
	list, err := api.service.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromCategories(list))
}

// Get /categories/:categoryId/
func (api *CategoryAPI) GetCategory(c *gin.Context) {
	category, err := api.service.GetCategory(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromCategory(category))
}

// Post /categories/
func (api *CategoryAPI) CreateCategory(c *gin.Context) {
	if err := auth.Authorize(principalFrom(c), auth.ManageCategories); err != nil {
		respondError(c, err)
		return
	}
	var payload petmapper.CategoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := api.service.CreateCategory(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, petmapper.FromCategory(category))
}

// Patch /categories/:categoryId/
func (api *CategoryAPI) UpdateCategory(c *gin.Context) {
	if err := auth.Authorize(principalFrom(c), auth.ManageCategories); err != nil {
		respondError(c, err)
		return
	}
	var payload petmapper.CategoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := api.service.UpdateCategory(c.Request.Context(), c.Param("categoryId"), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromCategory(category))
}

// Delete /categories/:categoryId/
func (api *CategoryAPI) DeleteCategory(c *gin.Context) {
	if err := auth.Authorize(principalFrom(c), auth.ManageCategories); err != nil {
		respondError(c, err)
		return
	}
	if err := api.service.DeleteCategory(c.Request.Context(), c.Param("categoryId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
