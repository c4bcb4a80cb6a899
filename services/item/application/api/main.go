package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/services/item/application/handlers"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, a *app.Application) {
	Routes(r, appsvcs.New(a), errhttp.Writer{IsProduction: a.IsProduction})
}

// Routes mounts the /items resource backed by svcs.
func Routes(r chi.Router, svcs *appsvcs.Services, errs errhttp.Writer) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", handlers.NewListItemsHandler(svcs, errs).Execute)
		r.Post("/", handlers.NewPostItemHandler(svcs, errs).Execute)
		r.Get("/{id}", handlers.NewGetItemHandler(svcs, errs).Execute)
		r.Put("/{id}", handlers.NewPutItemHandler(svcs, errs).Execute)
		r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, errs).Execute)
	})
}
