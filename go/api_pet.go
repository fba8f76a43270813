package petstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	petmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// PetAPI wires HTTP transport with the pets bounded context service.
type PetAPI struct {
	service petports.Service
}

// NewPetAPI creates a PetAPI backed by the provided service.
func NewPetAPI(service petports.Service) PetAPI {
	return PetAPI{service: service}
}

// Get /pets/
// Public catalog of listed pets
func (api *PetAPI) ListPets(c *gin.Context) {
	query, ok := petListQuery(c)
	if !ok {
		return
	}
	page, err := api.service.ListPets(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromPage(page))
}

// Get /pets/mine/
func (api *PetAPI) ListMyPets(c *gin.Context) {
	query, ok := petListQuery(c)
	if !ok {
		return
	}
	page, err := api.service.ListMyPets(c.Request.Context(), petActor(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromPage(page))
}

// Post /pets/
func (api *PetAPI) CreatePet(c *gin.Context) {
	input, ok := bindPetInput(c)
	if !ok {
		return
	}
	saved, err := api.service.CreatePet(c.Request.Context(), petActor(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, petmapper.FromProjection(saved))
}

// Get /pets/:petId/
func (api *PetAPI) GetPet(c *gin.Context) {
	pet, err := api.service.GetPet(c.Request.Context(), petActor(c), c.Param("petId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromProjection(pet))
}

// Patch /pets/:petId/
func (api *PetAPI) UpdatePet(c *gin.Context) {
	input, ok := bindPetInput(c)
	if !ok {
		return
	}
	updated, err := api.service.UpdatePet(c.Request.Context(), petActor(c), c.Param("petId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, petmapper.FromProjection(updated))
}

// Delete /pets/:petId/
func (api *PetAPI) DeletePet(c *gin.Context) {
	if err := api.service.DeletePet(c.Request.Context(), petActor(c), c.Param("petId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func petActor(c *gin.Context) pettypes.Actor {
	p := principalFrom(c)
	return pettypes.Actor{UserID: p.UserID, Moderator: p.Can(auth.ModeratePets)}
}

func bindPetInput(c *gin.Context) (pettypes.PetInput, bool) {
	var payload petmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return pettypes.PetInput{}, false
	}
	input, err := payload.ToInput()
	if err != nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{"fee": err.Error()}))
		return pettypes.PetInput{}, false
	}
	return input, true
}

func petListQuery(c *gin.Context) (pettypes.ListQuery, bool) {
	feeLT, ok := decimalQuery(c, "fee__lt")
	if !ok {
		return pettypes.ListQuery{}, false
	}
	feeGT, ok := decimalQuery(c, "fee__gt")
	if !ok {
		return pettypes.ListQuery{}, false
	}
	page, size := pageParams(c)
	return pettypes.ListQuery{
		Name:       c.Query("name"),
		CategoryID: c.Query("category"),
		FeeLT:      feeLT,
		FeeGT:      feeGT,
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
		Page:       page,
		PageSize:   size,
	}, true
}
