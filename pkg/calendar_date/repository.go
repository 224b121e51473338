package calendar_date

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// MatchMode decides how a row's niches are compared with the requested ones.
type MatchMode string

const (
	// MatchOverlap selects rows sharing at least one niche with the request.
	MatchOverlap MatchMode = "overlap"
	// MatchContains selects rows tagged with every requested niche.
	MatchContains MatchMode = "contains"
)

// Store is the backend holding calendar date rows.
type Store interface {
	FindByNiches(ctx context.Context, niches []string) ([]Row, error)
	ListNiches(ctx context.Context) ([]string, error)
}

type queryer interface {
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	db    queryer
	table string
	match MatchMode
}

func NewRepository(db queryer, table string, match MatchMode) *RepositoryImpl {
	return &RepositoryImpl{db: db, table: table, match: match}
}

func (r *RepositoryImpl) operator() string {
	if r.match == MatchContains {
		return "@>"
	}
	return "&&"
}

func (r *RepositoryImpl) FindByNiches(ctx context.Context, niches []string) ([]Row, error) {
	query := fmt.Sprintf(`SELECT id, data::text, "descrição", tipo, niches
			  FROM %s
			  WHERE niches %s $1
			  ORDER BY data, id`, pgx.Identifier{r.table}.Sanitize(), r.operator())

	rows, err := r.db.Query(ctx, query, niches)
	if err != nil {
		err := fmt.Errorf("could not query calendar dates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	result := make([]Row, 0, 16)
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Id, &row.Data, &row.Descricao, &row.Tipo, &row.Niches); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read calendar dates: %w", err)
	}
	return result, nil
}

func (r *RepositoryImpl) ListNiches(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT unnest(niches) AS niche FROM %s ORDER BY niche`, pgx.Identifier{r.table}.Sanitize())

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query niches: %w", err)
		log.Error(err)
		return nil, err
	}
	niches, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("could not read niches: %w", err)
	}
	return niches, nil
}

// StoreRow inserts a calendar date row. Used for seeding.
func (r *RepositoryImpl) StoreRow(ctx context.Context, row Row) error {
	query := fmt.Sprintf(`INSERT INTO %s (data, "descrição", tipo, niches) VALUES ($1::date, $2, $3, $4)`,
		pgx.Identifier{r.table}.Sanitize())
	if _, err := r.db.Exec(ctx, query, row.Data, row.Descricao, row.Tipo, row.Niches); err != nil {
		err := fmt.Errorf("could not store calendar date: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
