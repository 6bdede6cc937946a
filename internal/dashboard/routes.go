package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grimfell/muster/internal/facts"
	"github.com/grimfell/muster/internal/models"
	"github.com/grimfell/muster/internal/roster"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	router.GET("/api/lists", handleLists(db))
	router.GET("/api/lists/:id/facts", handleListFacts(db))
	router.POST("/api/lists/:id/recalc", handleListRecalc(db))
	router.GET("/api/lists/:id/actions", handleListActions(db))
}

// listSummary is the wire shape for a list row.
type listSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Rating  int    `json:"rating"`
	Stash   int    `json:"stash"`
	Credits int    `json:"credits"`
	Dirty   bool   `json:"dirty"`
}

func handleLists(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lists, err := roster.Lists(db, c.Query("owner"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]listSummary, 0, len(lists))
		for _, l := range lists {
			out = append(out, listSummary{
				ID:      l.ID,
				Name:    l.Name,
				Owner:   l.Owner,
				Rating:  l.RatingCurrent,
				Stash:   l.StashCurrent,
				Credits: l.CreditsCurrent,
				Dirty:   l.Dirty,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// handleListFacts serves the cached facts for a list. A stale cache returns
// stale=true with no facts; ?fresh=1 forces the full recompute instead.
func handleListFacts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if c.Query("fresh") == "1" {
			f, err := facts.ListFromDB(db, id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"stale": false, "facts": f})
			return
		}

		f, err := facts.List(db, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if f == nil {
			c.JSON(http.StatusOK, gin.H{"stale": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stale": false, "facts": f})
	}
}

func handleListRecalc(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := facts.ListFromDB(db, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"facts": f})
	}
}

func handleListActions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var actions []models.ListAction
		if err := db.Where("list_id = ?", c.Param("id")).
			Order("id DESC").Limit(50).Find(&actions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, actions)
	}
}
