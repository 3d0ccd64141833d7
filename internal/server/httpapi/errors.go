package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/server/spotify"
)

// StatusFor maps an outcome code onto the HTTP status reported to the caller.
func StatusFor(code common.Code) int {
	switch code {
	case common.CodeSuccess:
		return http.StatusOK
	case common.CodeNotConnected, common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeTokenExpired, common.CodeTokenRefreshFailed, common.CodeTokenInvalid, common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeProviderAuthError, common.CodeValidationError:
		return http.StatusBadRequest
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeAlreadyExists:
		return http.StatusConflict
	case common.CodeProviderAPIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	o := common.Describe(err)
	status := StatusFor(o.Description)

	fields := []any{"request_id", RequestIDFrom(r.Context()), "code", o.Description, "error", err}
	if pe, ok := spotify.AsProviderError(err); ok {
		fields = append(fields, "provider_status", pe.StatusCode, "provider_code", pe.Code)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", fields...)
	} else {
		s.logger.Warn(r.Context(), "request rejected", fields...)
	}
	writeJSON(w, status, o)
}
