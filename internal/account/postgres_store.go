package account

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// PostgresStore persists merchant profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, pr *Profile) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO merchants (id, business_name, business_type, tone, brand_voice, signature,
			tier, usage_count, usage_reset_at, stripe_customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pr.ID, pr.BusinessName, pr.BusinessType, pr.Tone, pr.BrandVoice, pr.Signature,
		string(pr.Tier), pr.UsageCount, pr.UsageResetAt, pr.StripeCustomerID,
		pr.CreatedAt, pr.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrProfileExists
		}
		return err
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Profile, error) {
	pr := &Profile{}
	var resetAt sql.NullTime
	var stripeID sql.NullString

	err := p.db.QueryRowContext(ctx, `
		SELECT id, business_name, business_type, tone, brand_voice, signature,
			tier, usage_count, usage_reset_at, stripe_customer_id, created_at, updated_at
		FROM merchants WHERE id = $1`, id).Scan(
		&pr.ID, &pr.BusinessName, &pr.BusinessType, &pr.Tone, &pr.BrandVoice, &pr.Signature,
		&pr.Tier, &pr.UsageCount, &resetAt, &stripeID, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	if resetAt.Valid {
		pr.UsageResetAt = &resetAt.Time
	}
	if stripeID.Valid {
		pr.StripeCustomerID = stripeID.String
	}
	return pr, nil
}

func (p *PostgresStore) Update(ctx context.Context, pr *Profile) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE merchants SET business_name = $1, business_type = $2, tone = $3,
			brand_voice = $4, signature = $5, tier = $6, usage_count = $7,
			usage_reset_at = $8, stripe_customer_id = $9, updated_at = $10
		WHERE id = $11`,
		pr.BusinessName, pr.BusinessType, pr.Tone, pr.BrandVoice, pr.Signature,
		string(pr.Tier), pr.UsageCount, pr.UsageResetAt, pr.StripeCustomerID,
		pr.UpdatedAt, pr.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Migrate creates the merchants table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS merchants (
			id                  VARCHAR(36) PRIMARY KEY,
			business_name       VARCHAR(255) NOT NULL,
			business_type       VARCHAR(255) NOT NULL,
			tone                VARCHAR(100) NOT NULL DEFAULT 'professional',
			brand_voice         TEXT NOT NULL DEFAULT '',
			signature           TEXT NOT NULL DEFAULT '',
			tier                VARCHAR(20) NOT NULL DEFAULT 'free',
			usage_count         INTEGER NOT NULL DEFAULT 0,
			usage_reset_at      TIMESTAMPTZ,
			stripe_customer_id  VARCHAR(255),
			created_at          TIMESTAMPTZ DEFAULT NOW(),
			updated_at          TIMESTAMPTZ DEFAULT NOW()
		);
	`)
	return err
}

var _ Store = (*PostgresStore)(nil)
