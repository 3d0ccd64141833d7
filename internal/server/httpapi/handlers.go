package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/dmitrijs2005/soulbeats/internal/server/auth"
	"github.com/dmitrijs2005/soulbeats/internal/server/models"
	"github.com/dmitrijs2005/soulbeats/internal/server/services"
	"github.com/gorilla/mux"
)

func ownerID(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.OwnerID
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %w", common.ErrValidation, err)
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrValidation, name)
	}
	return v, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, common.Success("OK"))
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.spotify.ExchangeToken(r.Context(), ownerID(r), req.Code, req.RedirectURI)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, exchangeResponse{
		Connected: resp.Connected,
		ExpiresAt: resp.ExpiresAt,
		Profile:   toProfileDTO(resp.Profile),
		Outcome:   resp.Outcome,
	})
}

// handleStatus reports token states with 200; only failures to determine
// the state are errors.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.spotify.GetStatus(r.Context(), ownerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := statusResponse{
		Connected:  resp.Connected,
		TokenValid: resp.TokenValid,
		Profile:    toProfileDTO(resp.Profile),
		Outcome:    resp.Outcome,
	}
	if !resp.ExpiresAt.IsZero() {
		out.ExpiresAt = &resp.ExpiresAt
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultPageLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.spotify.GetPlaylists(r.Context(), ownerID(r), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, StatusFor(resp.Outcome.Description), playlistsResponse{
		Playlists: toPlaylistDTOs(resp.Playlists),
		Total:     resp.Total,
		Limit:     resp.Limit,
		Offset:    resp.Offset,
		Outcome:   resp.Outcome,
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	resp, err := s.spotify.Disconnect(r.Context(), ownerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, StatusFor(resp.Outcome.Description), disconnectResponse{
		Disconnected: resp.Disconnected,
		Outcome:      resp.Outcome,
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	resp, err := s.preferences.GetPreferences(r.Context(), ownerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{
		Genres:  toPreferenceDTOs(resp.Genres),
		Artists: toPreferenceDTOs(resp.Artists),
		Outcome: resp.Outcome,
	})
}

func (s *Server) handleUpdateGenres(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.preferences.UpdateGenrePreferences(r.Context(), ownerID(r), toPreferenceItems(req.Preferences))
	s.writeUpdate(w, r, resp, err)
}

func (s *Server) handleUpdateArtists(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.preferences.UpdateArtistPreferences(r.Context(), ownerID(r), toPreferenceItems(req.Preferences))
	s.writeUpdate(w, r, resp, err)
}

func (s *Server) writeUpdate(w http.ResponseWriter, r *http.Request, resp *services.PreferencesUpdateResponse, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesUpdateResponse{UpdatedCount: resp.UpdatedCount, Outcome: resp.Outcome})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.catalog.GetGenres(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]genreDTO, 0, len(genres))
	for _, g := range genres {
		out = append(out, genreDTO{ID: g.ID, Name: g.Name, Description: g.Description, IconURL: g.IconURL, DisplayOrder: g.DisplayOrder})
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": out})
}

func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: genre id: %w", common.ErrValidation, err))
		return
	}

	artists, err := s.catalog.GetArtistsByGenre(r.Context(), genreID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]artistDTO, 0, len(artists))
	for _, a := range artists {
		out = append(out, artistDTO{ID: a.ID, Name: a.Name, SpotifyID: a.SpotifyID, ImageURL: a.ImageURL, GenreID: a.GenreID, Popularity: a.Popularity})
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": out})
}

// pathOwner resolves the {id} segment; "me" stands for the caller.
func pathOwner(r *http.Request) string {
	id := mux.Vars(r)["id"]
	if id == "me" {
		return ownerID(r)
	}
	return id
}

// handleRegister creates the caller's account. The email falls back to the
// one carried by the identity token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	id, _ := auth.IdentityFrom(r.Context())
	if req.Email == "" {
		req.Email = id.Email
	}

	resp, err := s.users.Register(r.Context(), id.OwnerID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: toUserDTO(resp.User), Outcome: resp.Outcome})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.users.GetUserInfo(r.Context(), ownerID(r), pathOwner(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: toUserDTO(resp.User), Outcome: resp.Outcome})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.users.UpdateProfile(r.Context(), ownerID(r), pathOwner(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: toUserDTO(resp.User), Outcome: resp.Outcome})
}
