package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/twinsights/modelgw/pkg/domain/model"
	xe "github.com/twinsights/modelgw/pkg/errors"
)

// pgRegistry stores RegisteredModels as jsonb documents
// in table "model", keyed by image tag.
type pgRegistry struct {
	pool *pgxpool.Pool
}

var _ model.Registry = &pgRegistry{}

const schema = `
create table if not exists "model" (
	"image" varchar(1024) primary key,
	"document" jsonb not null
);
`

// New connects the model Registry backed by postgres.
//
// It ensures the backing table exists before returning.
func New(ctx context.Context, pool *pgxpool.Pool) (model.Registry, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, xe.WrapWithNote("failed to ensure model table", err)
	}
	return &pgRegistry{pool: pool}, nil
}

func (r *pgRegistry) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *pgRegistry) Upsert(ctx context.Context, m model.RegisteredModel) error {
	document, err := json.Marshal(m)
	if err != nil {
		return xe.Wrap(err)
	}

	if _, err := r.pool.Exec(
		ctx,
		`
		insert into "model" ("image", "document") values ($1, $2)
		on conflict ("image") do update set "document" = "excluded"."document";
		`,
		m.Image, document,
	); err != nil {
		return xe.Wrap(asSchemaAdvice(err))
	}
	return nil
}

func (r *pgRegistry) Find(ctx context.Context, image string) (model.RegisteredModel, bool, error) {
	var document []byte
	err := r.pool.QueryRow(
		ctx,
		`select "document" from "model" where "image" = $1;`,
		image,
	).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RegisteredModel{}, false, nil
		}
		return model.RegisteredModel{}, false, xe.Wrap(asSchemaAdvice(err))
	}

	var m model.RegisteredModel
	if err := json.Unmarshal(document, &m); err != nil {
		return model.RegisteredModel{}, false, xe.WrapWithNote("broken model document", err)
	}
	return m, true, nil
}

func (r *pgRegistry) List(ctx context.Context) ([]model.RegisteredModel, error) {
	rows, err := r.pool.Query(
		ctx, `select "document" from "model" order by "image";`,
	)
	if err != nil {
		return nil, xe.Wrap(asSchemaAdvice(err))
	}
	defer rows.Close()

	found := []model.RegisteredModel{}
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, xe.Wrap(err)
		}
		var m model.RegisteredModel
		if err := json.Unmarshal(document, &m); err != nil {
			return nil, xe.WrapWithNote("broken model document", err)
		}
		found = append(found, m)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return found, nil
}

func (r *pgRegistry) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(
		ctx, `select count(*) from "model";`,
	).Scan(&count); err != nil {
		return 0, xe.Wrap(asSchemaAdvice(err))
	}
	return count, nil
}

// asSchemaAdvice makes "undefined table" failures actionable.
//
// The table is created by New, so hitting this means the store
// was wiped while the gateway is running.
func asSchemaAdvice(err error) error {
	if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
		if pgerr.Code == pgerrcode.UndefinedTable {
			return xe.WrapWithNote(`table "model" is missing. restart the gateway to recreate it`, err)
		}
	}
	return err
}
