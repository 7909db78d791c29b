// Command listd runs the challenge list API server.
package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/challengelist/listd/internal/config"
	"github.com/challengelist/listd/internal/db"
	"github.com/challengelist/listd/internal/http/api"
	"github.com/challengelist/listd/internal/positions"
	"github.com/challengelist/listd/internal/security"
	"github.com/challengelist/listd/internal/videolink"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the config file")
		port       = flag.Int("port", 0, "listen port, overrides config")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, errLoad := config.Load(config.ResolveConfigPath(*configPath))
	if errLoad != nil {
		log.WithError(errLoad).Fatal("load config")
	}
	if *port > 0 {
		cfg.Port = *port
	}

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		log.WithError(errOpen).Fatal("open database")
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		log.WithError(errMigrate).Fatal("migrate database")
	}

	issuer, errIssuer := security.NewTokenIssuer(cfg.JWT)
	if errIssuer != nil {
		log.WithError(errIssuer).Fatal("token issuer")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.New(api.Deps{
		DB:            conn,
		Issuer:        issuer,
		Engine:        positions.NewEngine(conn),
		Videos:        videolink.NewHTTPChecker(nil),
		MaxChallenges: cfg.MaxChallenges,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("listening")
	if errServe := http.ListenAndServe(addr, router); errServe != nil {
		log.WithError(errServe).Fatal("server stopped")
	}
}
