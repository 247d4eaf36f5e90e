package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/handler"
	"github.com/tabegoro/tabegoro/internal/middleware"
)

// RegisterMember registers everything behind a login. Profile and
// subscription management only need a valid token; reservations, favorites
// and reviews additionally require an active paid membership, checked
// against the database on every request so that a cancellation takes effect
// immediately.
func RegisterMember(e *echo.Echo, acct *handler.AccountHandler, sub *handler.SubscriptionHandler, resv *handler.ReservationHandler, fav *handler.FavoriteHandler, rev *handler.ReviewHandler, payStore middleware.PaymentChecker, jwtSecret string) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	auth.GET("/me", acct.Me)
	auth.PUT("/me", acct.Update)
	auth.GET("/me/orders", acct.OrderHistory)

	auth.POST("/subscription/checkout", sub.CreateCheckoutSession)
	// The provider sends the browser back with the session id in the query
	// string, so success is reachable by GET as well.
	auth.GET("/subscription/success", sub.Success)
	auth.POST("/subscription/success", sub.Success)
	auth.GET("/subscription/cancel", sub.CheckoutCancelled)
	auth.PUT("/subscription/card", sub.UpdateCard)
	auth.DELETE("/subscription", sub.Cancel)

	paid := auth.Group("", middleware.RequirePaid(payStore))

	paid.POST("/restaurants/:id/reserve", resv.Create)
	paid.GET("/reservations", resv.ListMine)
	paid.GET("/reservations/:reservation_id", resv.Detail)
	paid.DELETE("/reservations/:reservation_id", resv.Cancel)

	paid.POST("/shops/:id/favorite", fav.Toggle)
	paid.GET("/favorites", fav.ListMine)

	paid.POST("/restaurants/:id/reviews", rev.Create)
	paid.PUT("/restaurants/:id/reviews/:review_id", rev.Update)
	paid.DELETE("/restaurants/:id/reviews/:review_id", rev.Delete)
}
