package petstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reviewmapper "github.com/Apurer/pet-adoption-api/internal/domains/reviews/adapters/http/mapper"
	reviewtypes "github.com/Apurer/pet-adoption-api/internal/domains/reviews/application/types"
	reviewports "github.com/Apurer/pet-adoption-api/internal/domains/reviews/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
)

type ReviewAPI struct {
	service reviewports.Service
}

func NewReviewAPI(service reviewports.Service) ReviewAPI {
	return ReviewAPI{service: service}
}

// Get /pets/:petId/reviews/
func (api *ReviewAPI) ListReviews(c *gin.Context) {
	page, size := pageParams(c)
	result, err := api.service.ListReviews(c.Request.Context(), c.Param("petId"), reviewtypes.ListQuery{
		ReviewerID: c.Query("reviewer"),
		Ordering:   c.Query("ordering"),
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewmapper.FromPage(result))
}

// Get /pets/:petId/reviews/:reviewId/
func (api *ReviewAPI) GetReview(c *gin.Context) {
	review, err := api.service.GetReview(c.Request.Context(), c.Param("petId"), c.Param("reviewId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewmapper.FromProjection(review))
}

// Post /pets/:petId/reviews/
func (api *ReviewAPI) CreateReview(c *gin.Context) {
	var payload reviewmapper.ReviewRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	review, err := api.service.CreateReview(c.Request.Context(), reviewActor(c), c.Param("petId"), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reviewmapper.FromProjection(review))
}

// Patch /pets/:petId/reviews/:reviewId/
func (api *ReviewAPI) UpdateReview(c *gin.Context) {
	var payload reviewmapper.ReviewRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	review, err := api.service.UpdateReview(c.Request.Context(), reviewActor(c), c.Param("petId"), c.Param("reviewId"), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewmapper.FromProjection(review))
}

// Delete /pets/:petId/reviews/:reviewId/
func (api *ReviewAPI) DeleteReview(c *gin.Context) {
	if err := api.service.DeleteReview(c.Request.Context(), reviewActor(c), c.Param("petId"), c.Param("reviewId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewActor(c *gin.Context) reviewtypes.Actor {
	p := principalFrom(c)
	return reviewtypes.Actor{UserID: p.UserID, Moderator: p.Can(auth.ModerateReviews)}
}
