// Package handlers is the JSON transport layer. Handlers decode requests,
// resolve the authenticated actor and delegate to the services; all policy
// lives below this package.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"timesheet/apperr"
	"timesheet/middleware"
	"timesheet/services"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps an operational error to its status and code; anything
// else is logged and masked as a 500.
func respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	appErr, ok := apperr.From(err)
	if !ok {
		log.Error().Err(err).Msg("unhandled error")
		appErr = apperr.Internal(err)
	}

	var body errorBody
	body.Error.Code = appErr.Code
	body.Error.Message = appErr.Message
	respondJSON(w, appErr.Status, body)
}

func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// listResponse wraps a paginated collection.
type listResponse struct {
	Data interface{}       `json:"data"`
	Meta services.ListMeta `json:"meta"`
}

// pageParams reads ?page= and ?limit=; out-of-range values fall back to
// the service defaults.
func pageParams(r *http.Request) services.PageParams {
	var p services.PageParams
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		p.Limit = v
	}
	return p
}

// idParam parses a chi URL parameter as an id.
func idParam(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(v), nil
}

// actor returns the authenticated identity. The Authenticate middleware
// guarantees it is present on every protected route.
func actor(r *http.Request) *middleware.Actor {
	return middleware.ActorFromContext(r.Context())
}
