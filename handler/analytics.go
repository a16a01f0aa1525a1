package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"video-portal/dto"
	"video-portal/pkg/analytics"
)

const dateLayout = "2006-01-02"

// parseBound accepts RFC 3339 or a bare date. A bare upper bound covers the whole day.
func parseBound(raw string, upper bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", raw)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func parseWindow(c *gin.Context) (analytics.Window, bool) {
	from, err := parseBound(c.Query("from"), false)
	if err == nil {
		var to time.Time
		if to, err = parseBound(c.Query("to"), true); err == nil {
			if !from.IsZero() && !to.IsZero() && to.Before(from) {
				err = fmt.Errorf("to is before from")
			} else {
				return analytics.Window{From: from, To: to}, true
			}
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid date range", Details: err.Error()})
	return analytics.Window{}, false
}

func (h *HTTP) AnalyticsReport(c *gin.Context) {
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	report, err := h.Analytics.Report(c.Request.Context(), window)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HTTP) UserAnalytics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	report, err := h.Analytics.UserReport(c.Request.Context(), id, window)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HTTP) MyAnalytics(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	window, ok := parseWindow(c)
	if !ok {
		return
	}
	report, err := h.Analytics.UserReport(c.Request.Context(), sess.UserID, window)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
