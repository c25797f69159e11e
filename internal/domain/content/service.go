package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	blogs        BlogRepository
	testimonials TestimonialRepository
	banners      BannerRepository
	reels        ReelRepository
}

func NewService(blogs BlogRepository, testimonials TestimonialRepository, banners BannerRepository, reels ReelRepository) *Service {
	return &Service{blogs: blogs, testimonials: testimonials, banners: banners, reels: reels}
}

func require(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}

// -- blogs --

func (s *Service) CreateBlog(ctx context.Context, b *Blog) error {
	if err := require("title", b.Title); err != nil {
		return err
	}
	if err := require("body", b.Body); err != nil {
		return err
	}
	return s.blogs.Create(ctx, b)
}

func (s *Service) GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error) {
	return s.blogs.GetByID(ctx, id)
}

func (s *Service) UpdateBlog(ctx context.Context, b *Blog) error {
	if err := require("title", b.Title); err != nil {
		return err
	}
	return s.blogs.Update(ctx, b)
}

func (s *Service) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	return s.blogs.Delete(ctx, id)
}

func (s *Service) ListBlogs(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Blog, int, error) {
	return s.blogs.List(ctx, publishedOnly, limit, offset)
}

// -- testimonials --

func (s *Service) CreateTestimonial(ctx context.Context, t *Testimonial) error {
	if err := require("name", t.Name); err != nil {
		return err
	}
	if err := require("quote", t.Quote); err != nil {
		return err
	}
	if t.Rating < 1 || t.Rating > 5 {
		return fmt.Errorf("%w: rating must be 1-5", ErrMissingField)
	}
	return s.testimonials.Create(ctx, t)
}

func (s *Service) UpdateTestimonial(ctx context.Context, t *Testimonial) error {
	if t.Rating < 1 || t.Rating > 5 {
		return fmt.Errorf("%w: rating must be 1-5", ErrMissingField)
	}
	return s.testimonials.Update(ctx, t)
}

func (s *Service) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	return s.testimonials.Delete(ctx, id)
}

func (s *Service) ListTestimonials(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Testimonial, int, error) {
	return s.testimonials.List(ctx, publishedOnly, limit, offset)
}

// -- banners --

func (s *Service) CreateBanner(ctx context.Context, b *Banner) error {
	if err := require("title", b.Title); err != nil {
		return err
	}
	if err := require("image", b.Image); err != nil {
		return err
	}
	return s.banners.Create(ctx, b)
}

func (s *Service) UpdateBanner(ctx context.Context, b *Banner) error {
	if err := require("image", b.Image); err != nil {
		return err
	}
	return s.banners.Update(ctx, b)
}

func (s *Service) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return s.banners.Delete(ctx, id)
}

func (s *Service) ListBanners(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Banner, int, error) {
	return s.banners.List(ctx, publishedOnly, limit, offset)
}

// -- reels --

func (s *Service) CreateReel(ctx context.Context, r *Reel) error {
	if err := require("title", r.Title); err != nil {
		return err
	}
	if err := require("video_url", r.VideoURL); err != nil {
		return err
	}
	return s.reels.Create(ctx, r)
}

func (s *Service) UpdateReel(ctx context.Context, r *Reel) error {
	if err := require("video_url", r.VideoURL); err != nil {
		return err
	}
	return s.reels.Update(ctx, r)
}

func (s *Service) DeleteReel(ctx context.Context, id uuid.UUID) error {
	return s.reels.Delete(ctx, id)
}

func (s *Service) ListReels(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Reel, int, error) {
	return s.reels.List(ctx, publishedOnly, limit, offset)
}
