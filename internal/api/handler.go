package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"medipro-api/internal/auth"
	"medipro-api/internal/config"
	"medipro-api/internal/store"
)

// Handler holds dependencies for all HTTP handlers. Store fields are
// interfaces so tests can swap in mocks per resource.
type Handler struct {
	users      store.UserStorer
	categories store.CategoryStorer
	products   store.ProductStorer
	carts      store.CartStorer
	orders     store.OrderStorer
	reviews    store.ReviewStorer
	stats      store.StatsStorer

	tokens   auth.TokenManager
	provider auth.Provider
	admin    config.AdminConfig

	validate *validator.Validate
	log      *logrus.Logger
}

// Deps bundles the collaborators a Handler needs.
type Deps struct {
	Users      store.UserStorer
	Categories store.CategoryStorer
	Products   store.ProductStorer
	Carts      store.CartStorer
	Orders     store.OrderStorer
	Reviews    store.ReviewStorer
	Stats      store.StatsStorer
	Tokens     auth.TokenManager
	Provider   auth.Provider
	Admin      config.AdminConfig
	Log        *logrus.Logger
}

// NewHandler creates a new Handler with dependencies.
func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		users:      d.Users,
		categories: d.Categories,
		products:   d.Products,
		carts:      d.Carts,
		orders:     d.Orders,
		reviews:    d.Reviews,
		stats:      d.Stats,
		tokens:     d.Tokens,
		provider:   d.Provider,
		admin:      d.Admin,
		validate:   validator.New(),
		log:        log,
	}
}
