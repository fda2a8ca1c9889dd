package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes sets up the HTTP routes for the service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Get("/me", h.Me)
				r.Post("/logout", h.Logout)
				r.Post("/change-password", h.ChangePassword)
			})
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Put("/", h.UpdateProfile)
			r.Delete("/", h.DeactivateAccount)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/tree", h.CategoryTree)
			r.Get("/main", h.MainCategories)
			r.Get("/check-slug", h.CheckCategorySlug)
			r.Get("/slug/{slug}", h.GetCategoryBySlug)
			r.Get("/{categoryID}", h.GetCategory)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate, h.RequireAdmin)
				r.Post("/", h.CreateCategory)
				r.Post("/reorder", h.ReorderCategories)
				r.Put("/{categoryID}", h.UpdateCategory)
				r.Delete("/{categoryID}", h.DeleteCategory)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/featured", h.FeaturedProducts)
			r.Get("/slug/{slug}", h.GetProductBySlug)
			r.Get("/{productID}", h.GetProduct)
			r.Get("/{productID}/reviews", h.ListProductReviews)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Post("/{productID}/reviews", h.CreateReview)
			})

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate, h.RequireAdmin)
				r.Post("/", h.CreateProduct)
				r.Put("/{productID}", h.UpdateProduct)
				r.Delete("/{productID}", h.DeleteProduct)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{itemID}", h.UpdateCartItem)
			r.Delete("/items/{itemID}", h.RemoveCartItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Post("/", h.Checkout)
			r.Get("/", h.ListMyOrders)
			r.Get("/{orderID}", h.GetOrder)
			r.Post("/{orderID}/cancel", h.CancelOrder)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/me", h.ListMyReviews)
			r.Put("/{reviewID}", h.UpdateReview)
			r.Delete("/{reviewID}", h.DeleteReview)
		})

		r.Route("/admin", func(r chi.Router) {
			// Setup is gated by its secret, not by a bearer token,
			// because no admin exists yet when it runs.
			r.Post("/setup", h.AdminSetup)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate, h.RequireAdmin)
				r.Get("/dashboard", h.Dashboard)
				r.Get("/users", h.AdminListUsers)
				r.Patch("/users/{userID}/admin", h.AdminSetUserAdmin)
				r.Delete("/users/{userID}", h.AdminDeactivateUser)
				r.Get("/orders", h.AdminListOrders)
				r.Get("/orders/{orderID}", h.AdminGetOrder)
				r.Patch("/orders/{orderID}/status", h.AdminUpdateOrderStatus)
			})
		})
	})
}
