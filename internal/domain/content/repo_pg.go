package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheSujay/Arogya-Backend/internal/platform/db"
)

type pgRepo struct{ pool *pgxpool.Pool }

func (r *pgRepo) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// listFilter builds the shared WHERE/ORDER/LIMIT tail of the list queries.
const listTail = ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

func notFoundOn(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func checkAffected(tag interface{ RowsAffected() int64 }) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== Blogs ===========

type blogRepoPG struct{ pgRepo }

func NewBlogRepoPG(pool *pgxpool.Pool) BlogRepository {
	return &blogRepoPG{pgRepo{pool: pool}}
}

func (r *blogRepoPG) Create(ctx context.Context, b *Blog) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blog (id, title, body, image, author, published)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at, updated_at`,
		b.ID, b.Title, b.Body, b.Image, b.Author, b.Published).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *blogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	var b Blog
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, title, body, COALESCE(image,''), COALESCE(author,''), published, created_at, updated_at
		FROM blog WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Body, &b.Image, &b.Author, &b.Published, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return &b, nil
}

func (r *blogRepoPG) Update(ctx context.Context, b *Blog) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE blog SET title=$2, body=$3, image=$4, author=$5, published=$6, updated_at=NOW()
		WHERE id = $1`, b.ID, b.Title, b.Body, b.Image, b.Author, b.Published)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *blogRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blog WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *blogRepoPG) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Blog, int, error) {
	where := ``
	if publishedOnly {
		where = ` WHERE published`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blog`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, title, body, COALESCE(image,''), COALESCE(author,''), published, created_at, updated_at
		FROM blog`+where+listTail, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Blog
	for rows.Next() {
		var b Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Body, &b.Image, &b.Author, &b.Published, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &b)
	}
	return items, total, rows.Err()
}

// =========== Testimonials ===========

type testimonialRepoPG struct{ pgRepo }

func NewTestimonialRepoPG(pool *pgxpool.Pool) TestimonialRepository {
	return &testimonialRepoPG{pgRepo{pool: pool}}
}

func (r *testimonialRepoPG) Create(ctx context.Context, t *Testimonial) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO testimonial (id, name, image, rating, quote, published)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Image, t.Rating, t.Quote, t.Published).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *testimonialRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Testimonial, error) {
	var t Testimonial
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, COALESCE(image,''), rating, quote, published, created_at, updated_at
		FROM testimonial WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Image, &t.Rating, &t.Quote, &t.Published, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return &t, nil
}

func (r *testimonialRepoPG) Update(ctx context.Context, t *Testimonial) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE testimonial SET name=$2, image=$3, rating=$4, quote=$5, published=$6, updated_at=NOW()
		WHERE id = $1`, t.ID, t.Name, t.Image, t.Rating, t.Quote, t.Published)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *testimonialRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM testimonial WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *testimonialRepoPG) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Testimonial, int, error) {
	where := ``
	if publishedOnly {
		where = ` WHERE published`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM testimonial`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, COALESCE(image,''), rating, quote, published, created_at, updated_at
		FROM testimonial`+where+listTail, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Testimonial
	for rows.Next() {
		var t Testimonial
		if err := rows.Scan(&t.ID, &t.Name, &t.Image, &t.Rating, &t.Quote, &t.Published, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &t)
	}
	return items, total, rows.Err()
}

// =========== Banners ===========

type bannerRepoPG struct{ pgRepo }

func NewBannerRepoPG(pool *pgxpool.Pool) BannerRepository {
	return &bannerRepoPG{pgRepo{pool: pool}}
}

func (r *bannerRepoPG) Create(ctx context.Context, b *Banner) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO banner (id, title, image, link, published)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at, updated_at`,
		b.ID, b.Title, b.Image, b.Link, b.Published).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *bannerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Banner, error) {
	var b Banner
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, title, image, COALESCE(link,''), published, created_at, updated_at
		FROM banner WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Image, &b.Link, &b.Published, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return &b, nil
}

func (r *bannerRepoPG) Update(ctx context.Context, b *Banner) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE banner SET title=$2, image=$3, link=$4, published=$5, updated_at=NOW()
		WHERE id = $1`, b.ID, b.Title, b.Image, b.Link, b.Published)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *bannerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM banner WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *bannerRepoPG) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Banner, int, error) {
	where := ``
	if publishedOnly {
		where = ` WHERE published`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM banner`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, title, image, COALESCE(link,''), published, created_at, updated_at
		FROM banner`+where+listTail, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.Image, &b.Link, &b.Published, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &b)
	}
	return items, total, rows.Err()
}

// =========== Reels ===========

type reelRepoPG struct{ pgRepo }

func NewReelRepoPG(pool *pgxpool.Pool) ReelRepository {
	return &reelRepoPG{pgRepo{pool: pool}}
}

func (r *reelRepoPG) Create(ctx context.Context, item *Reel) error {
	item.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO reel (id, title, video_url, thumbnail, published)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at, updated_at`,
		item.ID, item.Title, item.VideoURL, item.Thumbnail, item.Published).
		Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *reelRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reel, error) {
	var item Reel
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, title, video_url, COALESCE(thumbnail,''), published, created_at, updated_at
		FROM reel WHERE id = $1`, id).
		Scan(&item.ID, &item.Title, &item.VideoURL, &item.Thumbnail, &item.Published, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, notFoundOn(err)
	}
	return &item, nil
}

func (r *reelRepoPG) Update(ctx context.Context, item *Reel) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reel SET title=$2, video_url=$3, thumbnail=$4, published=$5, updated_at=NOW()
		WHERE id = $1`, item.ID, item.Title, item.VideoURL, item.Thumbnail, item.Published)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *reelRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM reel WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(tag)
}

func (r *reelRepoPG) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*Reel, int, error) {
	where := ``
	if publishedOnly {
		where = ` WHERE published`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reel`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, title, video_url, COALESCE(thumbnail,''), published, created_at, updated_at
		FROM reel`+where+listTail, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Reel
	for rows.Next() {
		var item Reel
		if err := rows.Scan(&item.ID, &item.Title, &item.VideoURL, &item.Thumbnail, &item.Published, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &item)
	}
	return items, total, rows.Err()
}
