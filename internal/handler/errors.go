package handler

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/report"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

const unavailableMessage = "clustering/analysis temporarily unavailable"

// respondError maps service errors onto the JSON envelope: validation -> 400,
// not found -> 404, anything else -> 503 with the detail logged and reported
func respondError(c *gin.Context, op string, err error) {
	var verr *clustering.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Message)
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, "Complaint not found")
	default:
		log.Printf("[Handler] Error: %s: %v", op, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags: map[string]string{"operation": op, "http.route": c.FullPath()},
		})
		response.ServiceUnavailable(c, unavailableMessage)
	}
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	return nil, &clustering.ValidationError{Field: field, Message: fmt.Sprintf("Invalid %s: %q", field, value)}
}

// parseDateRange parses both bounds; a date-only upper bound covers the whole day
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	start, err := parseDate("date_from", from)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDate("date_to", to)
	if err != nil {
		return nil, nil, err
	}
	if end != nil && len(strings.TrimSpace(to)) == len("2006-01-02") {
		e := end.Add(24*time.Hour - time.Millisecond)
		end = &e
	}
	return start, end, nil
}
