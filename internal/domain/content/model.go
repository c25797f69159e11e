// Package content serves the marketing surface of the platform: blog posts,
// testimonials, homepage banners, and short video reels. Thin CRUD with a
// published flag; admins manage everything, the public sees published items.
package content

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("content not found")
	ErrMissingField = errors.New("required field missing")
)

type Blog struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Image     string    `json:"image,omitempty"`
	Author    string    `json:"author,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Testimonial struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Rating    int       `json:"rating"`
	Quote     string    `json:"quote"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Banner struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Link      string    `json:"link,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Reel struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"video_url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
