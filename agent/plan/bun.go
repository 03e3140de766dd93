package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PlanRecord is the row form of a DailyPlan. The full document lives in
// Payload; the other columns exist only for listing and ordering.
type PlanRecord struct {
	bun.BaseModel `bun:"table:daily_plans,alias:dp"`

	PlanID     string `bun:"plan_id,pk"`
	Date       string `bun:"date,notnull"`
	CreatedAt  string `bun:"created_at"`
	TotalTasks int    `bun:"total_tasks,notnull,default:0"`
	Payload    []byte `bun:"payload,type:jsonb,notnull"`
}

type BunStoreConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// BunStore persists plans in Postgres behind the same Store contract as
// FileStore. Conflicting updates to one plan id serialize on a row lock.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewBunStore(cfg BunStoreConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return &BunStore{
		db:  bun.NewDB(sqldb, pgdialect.New()),
		now: time.Now,
	}, nil
}

// Init creates the backing table when it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*PlanRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create daily_plans table: %w", err)
	}
	return nil
}

func (s *BunStore) Create(ctx context.Context, p *DailyPlan) (string, error) {
	if p == nil {
		return "", ErrNilPlan
	}
	if strings.TrimSpace(p.PlanID) == "" {
		p.PlanID = NewPlanID(s.now())
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return "", err
	}

	rec, err := toRecord(p)
	if err != nil {
		return "", err
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: id=%s", ErrPlanConflict, p.PlanID)
		}
		return "", fmt.Errorf("insert plan: %w", err)
	}
	return p.PlanID, nil
}

func (s *BunStore) Load(ctx context.Context, planID string) (*DailyPlan, error) {
	rec := new(PlanRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("plan_id = ?", planID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", ErrPlanNotFound, planID)
		}
		return nil, fmt.Errorf("select plan: %w", err)
	}
	return fromRecord(rec)
}

func (s *BunStore) Update(ctx context.Context, planID string, mutate func(*DailyPlan) error) (*DailyPlan, error) {
	if mutate == nil {
		return nil, errors.New("mutator is required")
	}

	var updated *DailyPlan
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		rec := new(PlanRecord)
		err := tx.NewSelect().
			Model(rec).
			Where("plan_id = ?", planID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: id=%s", ErrPlanNotFound, planID)
			}
			return fmt.Errorf("select plan for update: %w", err)
		}

		current, err := fromRecord(rec)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		next.PlanID = current.PlanID
		next.Normalize()
		if err := next.Validate(); err != nil {
			return err
		}

		nextRec, err := toRecord(next)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().
			Model(nextRec).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BunStore) List(ctx context.Context) ([]Summary, error) {
	var recs []PlanRecord
	err := s.db.NewSelect().
		Model(&recs).
		Column("plan_id", "date", "created_at", "total_tasks").
		Order("plan_id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	summaries := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, Summary{
			PlanID:     rec.PlanID,
			Date:       rec.Date,
			CreatedAt:  rec.CreatedAt,
			TotalTasks: rec.TotalTasks,
		})
	}
	return summaries, nil
}

func (s *BunStore) Latest(ctx context.Context) (*DailyPlan, error) {
	rec := new(PlanRecord)
	err := s.db.NewSelect().
		Model(rec).
		Order("plan_id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: store is empty", ErrPlanNotFound)
		}
		return nil, fmt.Errorf("select latest plan: %w", err)
	}
	return fromRecord(rec)
}

func toRecord(p *DailyPlan) (*PlanRecord, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return &PlanRecord{
		PlanID:     p.PlanID,
		Date:       p.Date,
		CreatedAt:  p.CreatedAt,
		TotalTasks: p.TotalTasks,
		Payload:    payload,
	}, nil
}

func fromRecord(rec *PlanRecord) (*DailyPlan, error) {
	var p DailyPlan
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan payload: %w", err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan loaded from store: %w", err)
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
