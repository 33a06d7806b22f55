package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Mehedi-programming/floating-library/app/echoServer/controller/account"
	"github.com/Mehedi-programming/floating-library/app/echoServer/controller/auth"
	"github.com/Mehedi-programming/floating-library/app/echoServer/controller/book"
	"github.com/Mehedi-programming/floating-library/app/echoServer/controller/borrow"
	"github.com/Mehedi-programming/floating-library/app/echoServer/controller/comment"
	"github.com/Mehedi-programming/floating-library/app/echoServer/controller/wishlist"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
)

type C struct {
	Auth     *auth.Controller
	Account  *account.Controller
	Book     *book.Controller
	Borrow   *borrow.Controller
	Comment  *comment.Controller
	Wishlist *wishlist.Controller

	Users     userrepo.Repo
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/signup", c.Auth.SignUp)
	pub.POST("/users/signin", c.Auth.SignIn)
	pub.POST("/users/forgot-password", c.Auth.ForgotPassword)
	pub.POST("/users/verify-otp", c.Auth.VerifyOtp)
	pub.POST("/users/reset-password", c.Auth.ResetPassword)

	pub.GET("/books", c.Book.List)
	pub.GET("/books/search", c.Book.Search)
	pub.GET("/books/top-rated", c.Book.TopRated)
	pub.GET("/books/recent", c.Book.RecentlyUpdated)
	pub.GET("/books/:id", c.Book.Detail)
	pub.GET("/books/:id/comments", c.Comment.ListByBook)
	pub.GET("/categories", c.Book.Categories)
	pub.GET("/categories/:id/books", c.Book.ByCategory)

	// Authenticated
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	}))
	authed.Use(LoadPrincipal(c.Users))

	active := RequireActive()
	admin := RequireAdmin()
	superAdmin := RequireSuperAdmin()

	// Profile
	authed.GET("/users/me", c.Account.Me)
	authed.PATCH("/users/me", c.Auth.EditProfile, active)
	authed.POST("/users/change-password", c.Auth.ChangePassword, active)

	// Books
	authed.POST("/books", c.Book.Create, active)
	authed.PATCH("/books/:id", c.Book.Update, active)
	authed.DELETE("/books/:id", c.Book.Delete)
	authed.GET("/users/me/books", c.Book.MyBooks)
	authed.GET("/users/me/books/count", c.Book.MyBookCount, active)
	authed.POST("/books/:id/review", c.Book.ToggleReview)

	// Comments & votes
	authed.POST("/books/:id/comments", c.Comment.Add)
	authed.PATCH("/comments/:id", c.Comment.Edit)
	authed.DELETE("/comments/:id", c.Comment.Delete)
	authed.POST("/comments/:id/vote", c.Comment.Vote)

	// Borrow requests
	authed.POST("/books/:id/borrow-requests", c.Borrow.Create, active)
	authed.PATCH("/borrow-requests/:id/cancel", c.Borrow.Cancel, active)
	authed.POST("/borrow-requests/:id/accept", c.Borrow.Accept, active)
	authed.POST("/borrow-requests/:id/reject", c.Borrow.Reject, active)
	authed.POST("/borrow-requests/:id/return", c.Borrow.Return, active)
	authed.GET("/borrow-requests/sent", c.Borrow.Sent, active)
	authed.GET("/borrow-requests/received", c.Borrow.Received, active)
	authed.GET("/borrow-requests/counts", c.Borrow.Counts, active)

	// Wishlist
	authed.POST("/books/:id/wishlist", c.Wishlist.Add, active)
	authed.GET("/wishlist", c.Wishlist.List, active)
	authed.DELETE("/books/:id/wishlist", c.Wishlist.Remove, active)

	// Admin
	authed.PATCH("/admin/users/:id/promote", c.Account.PromoteAdmin, superAdmin)
	authed.POST("/admin/users/:id/activate", c.Account.Activate, admin)
	authed.PATCH("/admin/users/:id/deactivate", c.Account.Deactivate, admin)
	authed.GET("/admin/users", c.Account.ListUsers, superAdmin)
	authed.GET("/admin/dashboard", c.Account.Dashboard, superAdmin)
}
