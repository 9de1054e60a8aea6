package endpoints

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server/middleware"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithStoreError maps store sentinel errors onto HTTP statuses
func respondWithStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidArgument), errors.Is(err, store.ErrUnknownKind):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetRequestID(r.Context()),
		}).Error("request failed")
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathVars returns the route variables, unescaped. The router matches on
// the encoded path so keys may contain slashes.
func pathVars(r *http.Request) map[string]string {
	vars := mux.Vars(r)
	out := make(map[string]string, len(vars))
	for name, value := range vars {
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		out[name] = value
	}
	return out
}

// decodeJSON decodes the request body into v, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid " + name + ": " + raw)
	}
	return &n, nil
}

// queryBool parses an optional boolean query parameter, false when absent
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid " + name + ": " + raw)
	}
	return b, nil
}

// clientIP returns the remote address, honouring X-Forwarded-For only when
// the direct peer is a trusted proxy
func clientIP(r *http.Request, cfg *config.MetastoreConfig) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if cfg == nil || !cfg.IsTrustedProxy(remote) {
		return remote
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return remote
}

// requestInfo is the client context recorded in audit events
type requestInfo struct {
	ClientIP  string
	RequestID string
}

func newRequestInfo(r *http.Request, cfg *config.MetastoreConfig) requestInfo {
	return requestInfo{
		ClientIP:  clientIP(r, cfg),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
