package campaignrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/campaigncache/internal/domain"
	"github.com/Amund211/campaigncache/internal/reporting"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ CampaignRepository = (*Postgres)(nil)

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("campaigncache/campaignrepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbCampaign struct {
	ID        string       `db:"id"`
	Name      string       `db:"name"`
	Status    string       `db:"status"`
	StartsAt  time.Time    `db:"starts_at"`
	EndsAt    sql.NullTime `db:"ends_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (c dbCampaign) toDomain() domain.Campaign {
	campaign := domain.Campaign{
		ID:        c.ID,
		Name:      c.Name,
		Status:    domain.CampaignStatus(c.Status),
		StartsAt:  c.StartsAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.EndsAt.Valid {
		endsAt := c.EndsAt.Time
		campaign.EndsAt = &endsAt
	}
	return campaign
}

func (p *Postgres) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.ListCampaigns")
	defer span.End()

	var rows []dbCampaign
	err := p.db.SelectContext(
		ctx,
		&rows,
		fmt.Sprintf(
			`SELECT id, name, status, starts_at, ends_at, updated_at
			FROM %s.campaigns
			ORDER BY starts_at ASC, id ASC`,
			pq.QuoteIdentifier(p.schema),
		),
	)
	if err != nil {
		err := fmt.Errorf("failed to select campaigns: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("campaigns.count", len(rows)))

	campaigns := make([]domain.Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, row.toDomain())
	}

	return campaigns, nil
}

func (p *Postgres) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.GetCampaign")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return domain.Campaign{}, fmt.Errorf("%w: %s", domain.ErrInvalidCampaignID, id)
	}

	var row dbCampaign
	err := p.db.GetContext(
		ctx,
		&row,
		fmt.Sprintf(
			`SELECT id, name, status, starts_at, ends_at, updated_at
			FROM %s.campaigns
			WHERE id = $1`,
			pq.QuoteIdentifier(p.schema),
		),
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	} else if err != nil {
		err := fmt.Errorf("failed to select campaign: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"campaignID": id,
		})
		return domain.Campaign{}, err
	}

	return row.toDomain(), nil
}
