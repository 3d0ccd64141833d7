package models

import "time"

type Genre struct {
	ID           int64
	Name         string
	Description  string
	IconURL      string
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
}

type Artist struct {
	ID         int64
	Name       string
	SpotifyID  string
	ImageURL   string
	GenreID    int64
	Popularity int
	IsActive   bool
	CreatedAt  time.Time
}
