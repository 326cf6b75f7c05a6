package webserver

import (
	"net/http"

	"github.com/commonhall/agora/src/shared/data"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func New(db *gorm.DB) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), cors.Default())

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	p := NewProposals(data.NewProposalStore(db))
	v1 := g.Group("/v1")
	v1.GET("/proposals", p.List)
	v1.GET("/proposals/:id", p.Get)

	return g
}
