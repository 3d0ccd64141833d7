package models

// SpotifyProfile is the subset of the provider's user profile the service exposes.
type SpotifyProfile struct {
	ID          string
	DisplayName string
	Email       string
	Country     string
	Product     string
	Followers   int
	ImageURL    string
	ExternalURL string
}

type Playlist struct {
	ID               string
	Name             string
	Description      string
	Public           bool
	Collaborative    bool
	SnapshotID       string
	TracksTotal      int
	ExternalURL      string
	ImageURL         string
	OwnerID          string
	OwnerDisplayName string
}

// PlaylistPage is one page of the owner's playlists as reported by the provider.
type PlaylistPage struct {
	Items  []Playlist
	Total  int
	Limit  int
	Offset int
}
