package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sparkbytes.org/internal/event"
)

const uniqueViolation = "23505"

// Store implements event.Service on PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ event.Service = (*Store)(nil)

// Open connects to PostgreSQL via the pgx stdlib driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Create(ctx context.Context, e event.Event) (event.Event, error) {
	if err := event.Validate(e); err != nil {
		return event.Event{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`insert into events(name, description, location, date, time)
		 values($1,$2,$3,$4,$5)
		 returning id, created_at`,
		e.Name, e.Description, e.Location, e.Date, e.Time,
	)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return event.Event{}, event.ErrAlreadyExists
		}
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id int64) (event.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, description, location, date, time, created_at
		 from events where id=$1`, id)
	return scanEvent(row)
}

func (s *Store) GetByName(ctx context.Context, name string) (event.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, description, location, date, time, created_at
		 from events where lower(name)=lower($1)`, name)
	return scanEvent(row)
}

func (s *Store) Update(ctx context.Context, id int64, e event.Event) (event.Event, error) {
	if err := event.Validate(e); err != nil {
		return event.Event{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`update events
		 set name=$2, description=$3, location=$4, date=$5, time=$6
		 where id=$1
		 returning id, name, description, location, date, time, created_at`,
		id, e.Name, e.Description, e.Location, e.Date, e.Time,
	)
	updated, err := scanEvent(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return event.Event{}, event.ErrAlreadyExists
		}
		return event.Event{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from events where id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, description, location, date, time, created_at
		 from events order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []event.Event
	for rows.Next() {
		var e event.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.Time, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func scanEvent(row *sql.Row) (event.Event, error) {
	var e event.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.Time, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return e, nil
}
