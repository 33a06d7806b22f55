// Package main floating library API.
//
// @title           Floating Library API
// @version         1.0
// @description     peer-to-peer book lending (catalog, borrow requests, comments, wishlist).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Mehedi-programming/floating-library/app/echoServer"
	accountctrl "github.com/Mehedi-programming/floating-library/app/echoServer/controller/account"
	authctrl "github.com/Mehedi-programming/floating-library/app/echoServer/controller/auth"
	bookctrl "github.com/Mehedi-programming/floating-library/app/echoServer/controller/book"
	borrowctrl "github.com/Mehedi-programming/floating-library/app/echoServer/controller/borrow"
	commentctrl "github.com/Mehedi-programming/floating-library/app/echoServer/controller/comment"
	wishlistctrl "github.com/Mehedi-programming/floating-library/app/echoServer/controller/wishlist"
	"github.com/Mehedi-programming/floating-library/app/echoServer/validation"
	"github.com/Mehedi-programming/floating-library/config"
	"github.com/Mehedi-programming/floating-library/notifier"
	bookrepo "github.com/Mehedi-programming/floating-library/repository/book"
	borrowrepo "github.com/Mehedi-programming/floating-library/repository/borrow"
	commentrepo "github.com/Mehedi-programming/floating-library/repository/comment"
	otprepo "github.com/Mehedi-programming/floating-library/repository/otp"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
	wishlistrepo "github.com/Mehedi-programming/floating-library/repository/wishlist"
	accountsvc "github.com/Mehedi-programming/floating-library/service/account"
	authsvc "github.com/Mehedi-programming/floating-library/service/auth"
	booksvc "github.com/Mehedi-programming/floating-library/service/book"
	borrowsvc "github.com/Mehedi-programming/floating-library/service/borrow"
	commentsvc "github.com/Mehedi-programming/floating-library/service/comment"
	passwordsvc "github.com/Mehedi-programming/floating-library/service/password"
	wishlistsvc "github.com/Mehedi-programming/floating-library/service/wishlist"
	"github.com/Mehedi-programming/floating-library/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// mail
	var mail notifier.Notifier = notifier.Noop{}
	if cfg.SMTPHost != "" {
		mail = notifier.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	// repos
	ur := userrepo.New(db)
	or := otprepo.New(db)
	br := bookrepo.New(db)
	rr := borrowrepo.New(db)
	cr := commentrepo.New(db)
	wr := wishlistrepo.New(db)

	// services
	as := authsvc.New(db, ur, mail, log, cfg.JWTSecret)
	ps := passwordsvc.New(db, ur, or, mail, log)
	acs := accountsvc.New(ur, mail, log)
	bs := booksvc.New(db, br)
	bws := borrowsvc.New(db, rr, mail, log)
	cs := commentsvc.New(db, cr, br)
	ws := wishlistsvc.New(wr, br)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, Pwd: ps, V: v, Log: log}
	accountC := &accountctrl.Controller{Svc: acs, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: bws, Log: log}
	commentC := &commentctrl.Controller{Svc: cs, V: v, Log: log}
	wishlistC := &wishlistctrl.Controller{Svc: ws, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Account:  accountC,
		Book:     bookC,
		Borrow:   borrowC,
		Comment:  commentC,
		Wishlist: wishlistC,

		Users:     ur,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
