package content

import (
	"context"

	"github.com/google/uuid"
)

type BlogRepository interface {
	Create(ctx context.Context, b *Blog) error
	GetByID(ctx context.Context, id uuid.UUID) (*Blog, error)
	Update(ctx context.Context, b *Blog) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns items newest first. publishedOnly filters to the public
	// view.
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Blog, int, error)
}

type TestimonialRepository interface {
	Create(ctx context.Context, t *Testimonial) error
	GetByID(ctx context.Context, id uuid.UUID) (*Testimonial, error)
	Update(ctx context.Context, t *Testimonial) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Testimonial, int, error)
}

type BannerRepository interface {
	Create(ctx context.Context, b *Banner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Banner, error)
	Update(ctx context.Context, b *Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Banner, int, error)
}

type ReelRepository interface {
	Create(ctx context.Context, r *Reel) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reel, error)
	Update(ctx context.Context, r *Reel) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Reel, int, error)
}
