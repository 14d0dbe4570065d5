// internal/platform/di/store/container.go
package store

import (
	"net/http"

	"emporia/internal/adapters/in/http/middleware"
	storerouter "emporia/internal/adapters/in/http/store"
	storeHandler "emporia/internal/adapters/in/http/store/handler"
	dbout "emporia/internal/adapters/out/db"
	fsrepo "emporia/internal/adapters/out/firestore"
	"emporia/internal/adapters/out/gcs"
	"emporia/internal/adapters/out/mail"
	usecase "emporia/internal/application/usecase"
	shared "emporia/internal/platform/di/shared"
)

// Container wires the storefront: repositories → usecases → handlers → mux.
type Container struct {
	Mux *http.ServeMux

	Catalog  *usecase.CatalogUsecase
	Checkout *usecase.CheckoutUsecase
	Orders   *usecase.OrderUsecase
}

// New builds the full storefront container from shared infra.
func New(inf *shared.Infra) *Container {
	// out adapters
	itemRepo := fsrepo.NewItemRepositoryFS(inf.Firestore)
	categoryRepo := fsrepo.NewCategoryRepositoryFS(inf.Firestore)
	checkoutRepo := fsrepo.NewCheckoutRepositoryFS(inf.Firestore)

	var images storeHandler.ImageResolver
	if inf.GCS != nil {
		images = gcs.NewItemImageResolver(inf.GCS, inf.Config.ItemImageBucket)
	}

	// usecases
	catalogUC := usecase.NewCatalogUsecase(itemRepo, categoryRepo)
	checkoutUC := usecase.NewCheckoutUsecase(checkoutRepo, itemRepo)
	orderUC := usecase.NewOrderUsecase(checkoutRepo, itemRepo)

	// post-completion hooks (all optional)
	if inf.SendGridAPIKey != "" && inf.FirebaseAuth != nil {
		client := mail.NewSendGridClient(inf.SendGridAPIKey, "Emporia")
		checkoutUC.WithNotifier(mail.NewOrderMailer(client, inf.FirebaseAuth, inf.Config.MailFromAddress))
	}
	if inf.Postgres != nil {
		checkoutUC.WithExporter(dbout.NewOrderExportPG(inf.Postgres.Client))
	}

	// in adapters
	auth := &middleware.AuthMiddleware{FirebaseAuth: inf.FirebaseAuth}

	mux := http.NewServeMux()
	storerouter.Register(mux, storerouter.Deps{
		Catalog:  storeHandler.NewCatalogHandler(catalogUC, images),
		Cart:     auth.Handler(storeHandler.NewCartHandler(checkoutUC)),
		Checkout: auth.Handler(storeHandler.NewCheckoutHandler(checkoutUC)),
		Order:    auth.Handler(storeHandler.NewOrderHandler(orderUC)),
	})

	return &Container{
		Mux:      mux,
		Catalog:  catalogUC,
		Checkout: checkoutUC,
		Orders:   orderUC,
	}
}
