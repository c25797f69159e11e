package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheSujay/Arogya-Backend/internal/platform/auth"
	"github.com/TheSujay/Arogya-Backend/internal/platform/db"
)

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO message (id, sender_id, receiver_id, sender_role, receiver_role, content)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING sent_at`,
		m.ID, m.SenderID, m.ReceiverID, m.SenderRole, m.ReceiverRole, m.Content).
		Scan(&m.SentAt)
}

func (r *messageRepoPG) History(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	const pair = `(sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM message WHERE `+pair, userID, otherID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, sender_id, receiver_id, sender_role, receiver_role, content, read, sent_at
		FROM message WHERE `+pair+`
		ORDER BY sent_at ASC LIMIT $3 OFFSET $4`, userID, otherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SenderRole, &m.ReceiverRole,
			&m.Content, &m.Read, &m.SentAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}

func (r *messageRepoPG) MarkRead(ctx context.Context, readerID, senderID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE message SET read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT read`, readerID, senderID)
	return err
}

func (r *messageRepoPG) UnreadCount(ctx context.Context, readerID, senderID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM message
		WHERE receiver_id = $1 AND sender_id = $2 AND NOT read`, readerID, senderID).Scan(&n)
	return n, err
}

// partnerSourcePG derives chat partners from the appointment ledger.
type partnerSourcePG struct{ pool *pgxpool.Pool }

func NewPartnerSourcePG(pool *pgxpool.Pool) PartnerSource {
	return &partnerSourcePG{pool: pool}
}

func (r *partnerSourcePG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *partnerSourcePG) PartnersOfPatient(ctx context.Context, patientID uuid.UUID) ([]*Partner, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT d.id, d.name, COALESCE(d.image, '')
		FROM appointment a JOIN doctor d ON d.id = a.doctor_id
		WHERE a.patient_id = $1 AND NOT a.cancelled
		ORDER BY d.name`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPartners(rows, auth.RoleDoctor)
}

func (r *partnerSourcePG) PartnersOfDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Partner, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT p.id, p.name, COALESCE(p.image, '')
		FROM appointment a JOIN patient p ON p.id = a.patient_id
		WHERE a.doctor_id = $1 AND NOT a.cancelled
		ORDER BY p.name`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPartners(rows, auth.RolePatient)
}

type partnerRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPartners(rows partnerRows, role string) ([]*Partner, error) {
	var out []*Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Image); err != nil {
			return nil, err
		}
		p.Role = role
		out = append(out, &p)
	}
	return out, rows.Err()
}
