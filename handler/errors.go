package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"video-portal/dto"
	"video-portal/service"
)

type errorMapping struct {
	target error
	status int
}

var errorStatuses = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrUploadFailed, http.StatusBadGateway},
	{service.ErrMailFailed, http.StatusInternalServerError},
}

// writeError maps a service error onto a status code and an {error, details} body.
func writeError(c *gin.Context, err error) {
	for _, m := range errorStatuses {
		if !errors.Is(err, m.target) {
			continue
		}
		res := dto.ErrorResponse{Error: m.target.Error()}
		if detail := strings.TrimPrefix(err.Error(), m.target.Error()+": "); detail != err.Error() {
			res.Details = detail
		}
		if m.status >= http.StatusInternalServerError {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		}
		c.AbortWithStatusJSON(m.status, res)
		return
	}

	zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

// writeBindError reports a request body that failed to decode or validate.
// A missing required field is named by its JSON key.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := "invalid field: " + jsonName(fe.Field())
		if fe.Tag() == "required" {
			msg = "missing required field: " + jsonName(fe.Field())
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Details: fe.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Details: err.Error()})
}

func jsonName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}
	return string(unicode.ToLower(r)) + field[size:]
}
