package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/config"
	"github.com/mapaserver/geocatalog/models"
	"github.com/mapaserver/geocatalog/routers"
)

func main() {
	models.InitDB()

	r := gin.Default()
	routers.GeoRouters(r, models.DB)

	log.Printf("geocatalog listening on %s", config.MainRouter)
	if err := r.Run(config.MainRouter); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
