package petstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Auth requires a resolved principal before the handler runs.
	Auth bool
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	AuthAPI     AuthAPI
	CategoryAPI CategoryAPI
	PetAPI      PetAPI
	AdoptionAPI AdoptionAPI
	ReviewAPI   ReviewAPI
	PaymentAPI  PaymentAPI
	OpsAPI      OpsAPI
}

// NewRouter returns a new router. middleware runs before authentication,
// so tracing and metrics see rejected requests too.
func NewRouter(handleFunctions ApiHandleFunctions, authenticator Authenticator, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	router.Use(Authenticate(authenticator))
	router.NoRoute(func(c *gin.Context) { respondProblem(c, notFoundRoute(c)) })
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if route.Auth {
			handlers = append([]gin.HandlerFunc{RequireAuth()}, handlers...)
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, handlers...)
		case http.MethodPost:
			router.POST(route.Pattern, handlers...)
		case http.MethodPut:
			router.PUT(route.Pattern, handlers...)
		case http.MethodPatch:
			router.PATCH(route.Pattern, handlers...)
		case http.MethodDelete:
			router.DELETE(route.Pattern, handlers...)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	routes := []Route{
		{"Register", http.MethodPost, "/auth/register/", h.AuthAPI.Register, false},
		{"Login", http.MethodPost, "/auth/login/", h.AuthAPI.Login, false},
		{"Logout", http.MethodPost, "/auth/logout/", h.AuthAPI.Logout, true},
		{"Me", http.MethodGet, "/auth/me/", h.AuthAPI.Me, true},
		{"UpdateMe", http.MethodPatch, "/auth/me/", h.AuthAPI.UpdateMe, true},
		{"GetUser", http.MethodGet, "/users/:userId/", h.AuthAPI.GetUser, true},

		{"ListCategories", http.MethodGet, "/categories/", h.CategoryAPI.ListCategories, false},
		{"CreateCategory", http.MethodPost, "/categories/", h.CategoryAPI.CreateCategory, true},
		{"GetCategory", http.MethodGet, "/categories/:categoryId/", h.CategoryAPI.GetCategory, false},
		{"UpdateCategory", http.MethodPatch, "/categories/:categoryId/", h.CategoryAPI.UpdateCategory, true},
		{"DeleteCategory", http.MethodDelete, "/categories/:categoryId/", h.CategoryAPI.DeleteCategory, true},

		{"ListPets", http.MethodGet, "/pets/", h.PetAPI.ListPets, false},
		{"CreatePet", http.MethodPost, "/pets/", h.PetAPI.CreatePet, true},
		{"ListMyPets", http.MethodGet, "/pets/mine/", h.PetAPI.ListMyPets, true},
		{"GetPet", http.MethodGet, "/pets/:petId/", h.PetAPI.GetPet, false},
		{"UpdatePet", http.MethodPatch, "/pets/:petId/", h.PetAPI.UpdatePet, true},
		{"DeletePet", http.MethodDelete, "/pets/:petId/", h.PetAPI.DeletePet, true},

		{"ListAdoptions", http.MethodGet, "/pets/:petId/adoptions/", h.AdoptionAPI.ListAdoptions, false},
		{"AdoptPet", http.MethodPost, "/pets/:petId/adoptions/", h.AdoptionAPI.AdoptPet, true},
		{"GetAdoption", http.MethodGet, "/pets/:petId/adoptions/:adoptionId/", h.AdoptionAPI.GetAdoption, false},

		{"ListReviews", http.MethodGet, "/pets/:petId/reviews/", h.ReviewAPI.ListReviews, false},
		{"CreateReview", http.MethodPost, "/pets/:petId/reviews/", h.ReviewAPI.CreateReview, true},
		{"GetReview", http.MethodGet, "/pets/:petId/reviews/:reviewId/", h.ReviewAPI.GetReview, false},
		{"UpdateReview", http.MethodPatch, "/pets/:petId/reviews/:reviewId/", h.ReviewAPI.UpdateReview, true},
		{"DeleteReview", http.MethodDelete, "/pets/:petId/reviews/:reviewId/", h.ReviewAPI.DeleteReview, true},

		{"InitiatePayment", http.MethodPost, "/payments/initiate/", h.PaymentAPI.Initiate, true},
		{"PaymentSuccess", http.MethodPost, "/payments/success/", h.PaymentAPI.Success, false},
		{"PaymentFail", http.MethodPost, "/payments/fail/", h.PaymentAPI.Fail, false},
		{"PaymentCancel", http.MethodPost, "/payments/cancel/", h.PaymentAPI.Cancel, false},
		{"ListPayments", http.MethodGet, "/payments/", h.PaymentAPI.ListPayments, true},
		{"GetPayment", http.MethodGet, "/payments/:paymentId/", h.PaymentAPI.GetPayment, true},

		{"Healthz", http.MethodGet, "/healthz", h.OpsAPI.Healthz, false},
		{"Readyz", http.MethodGet, "/readyz", h.OpsAPI.Readyz, false},
		{"Metrics", http.MethodGet, "/metrics", h.OpsAPI.Metrics, false},
	}
	if h.PaymentAPI.fakeCheckout {
		routes = append(routes, Route{"FakeCheckout", http.MethodGet, "/payments/fake-checkout", h.PaymentAPI.FakeCheckout, false})
	}
	return routes
}
