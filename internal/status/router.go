// Package status serves the LAN-facing status API: health, the journaled run
// reports, and Prometheus metrics. It complements UDP discovery; discovery
// tells you which machines exist, this tells you how their first boot went.
package status

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/archfrog/KioskForge/internal/engine"
	"github.com/archfrog/KioskForge/internal/netcheck"
)

// NewRouter builds the API around a run journal.
func NewRouter(journal *engine.Journal, version string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version,
			"lan_ip":  netcheck.LanIP(),
		})
	})

	r.GET("/status", func(c *gin.Context) {
		report, err := journal.Latest()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if report == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no runs recorded yet"})
			return
		}
		c.JSON(http.StatusOK, summarize(report))
	})

	r.GET("/reports", func(c *gin.Context) {
		reports, err := journal.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		summaries := make([]gin.H, 0, len(reports))
		for _, report := range reports {
			summaries = append(summaries, summarize(report))
		}
		c.JSON(http.StatusOK, summaries)
	})

	r.GET("/report/:id", func(c *gin.Context) {
		report, err := journal.Get(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if report == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown run id"})
			return
		}
		c.JSON(http.StatusOK, report)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// summarize trims a report down to what a fleet dashboard polls for.
func summarize(report *engine.Report) gin.H {
	failed := report.Failures()
	descriptions := make([]string, 0, len(failed))
	for _, f := range failed {
		descriptions = append(descriptions, f.Module+": "+f.Description)
	}
	return gin.H{
		"run_id":       report.ID,
		"hostname":     report.Hostname,
		"started":      report.Started,
		"finished":     report.Finished,
		"success":      report.Success,
		"steps":        len(report.Steps),
		"failed_steps": descriptions,
	}
}
