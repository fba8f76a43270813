package petstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usermapper "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
)

// AuthAPI serves registration, sessions, and profiles.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /auth/register/
func (api *AuthAPI) Register(c *gin.Context) {
	var payload usermapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.Register(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usermapper.FromDomainUser(user))
}

// Post /auth/login/
func (api *AuthAPI) Login(c *gin.Context) {
	var payload usermapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromLoginResult(result))
}

// Post /auth/logout/
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /auth/me/
func (api *AuthAPI) Me(c *gin.Context) {
	user, err := api.service.GetByID(c.Request.Context(), principalFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUser(user))
}

// Patch /auth/me/
func (api *AuthAPI) UpdateMe(c *gin.Context) {
	var payload usermapper.ProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.UpdateProfile(c.Request.Context(), principalFrom(c).UserID, payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUser(user))
}

// Get /users/:userId/
func (api *AuthAPI) GetUser(c *gin.Context) {
	if err := auth.Authorize(principalFrom(c), auth.ViewUsers); err != nil {
		respondError(c, err)
		return
	}
	user, err := api.service.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromDomainUser(user))
}
