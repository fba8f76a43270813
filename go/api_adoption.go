package petstoreserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	adoptionmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
)

// AdoptionAPI serves a pet's adoption history and the adopt action.
type AdoptionAPI struct {
	service adoptionports.Service
}

func NewAdoptionAPI(service adoptionports.Service) AdoptionAPI {
	return AdoptionAPI{service: service}
}

// Post /pets/:petId/adoptions/
// Adopts the pet for the caller, or for adopter_id when staff adopt on someone's behalf.
func (api *AdoptionAPI) AdoptPet(c *gin.Context) {
	var payload adoptionmapper.AdoptRequest
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	principal := principalFrom(c)
	if payload.AdopterID != "" && payload.AdopterID != principal.UserID {
		if err := auth.Authorize(principal, auth.AdoptOnBehalf); err != nil {
			respondError(c, err)
			return
		}
	}
	adoption, err := api.service.AdoptPet(c.Request.Context(), payload.ToInput(c.Param("petId"), principal.UserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adoptionmapper.FromDomain(adoption))
}

// Get /pets/:petId/adoptions/
func (api *AdoptionAPI) ListAdoptions(c *gin.Context) {
	after, ok := timeQuery(c, "date_after")
	if !ok {
		return
	}
	before, ok := timeQuery(c, "date_before")
	if !ok {
		return
	}
	page, size := pageParams(c)
	result, err := api.service.ListAdoptions(c.Request.Context(), c.Param("petId"), adoptiontypes.ListQuery{
		AdoptedBy:  c.Query("adopted_by"),
		DateAfter:  after,
		DateBefore: before,
		Ordering:   c.Query("ordering"),
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionmapper.FromPage(result))
}

// Get /pets/:petId/adoptions/:adoptionId/
func (api *AdoptionAPI) GetAdoption(c *gin.Context) {
	adoption, err := api.service.GetAdoption(c.Request.Context(), c.Param("petId"), c.Param("adoptionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionmapper.FromDomain(adoption))
}
