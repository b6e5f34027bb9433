package handlers

import (
	"net/http"
	"time"

	"taskpilot/middleware"
	"taskpilot/models"
	"taskpilot/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// mustActor extracts the authenticated actor or writes a 401. Handlers
// behind JWTAuthMiddleware should never hit the failure branch.
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authorization required")
		return models.Actor{}, false
	}
	return actor, true
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter as UTC
// midnight. Returns nil when the parameter is absent.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDateRange reads the optional from/to query bounds. The upper bound is
// pushed to the end of its day so a same-day range still matches that day.
func parseDateRange(c *gin.Context) (from, to *time.Time, err error) {
	from, err = parseDateQuery(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err = parseDateQuery(c, "to")
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
