package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Summary is the listing form of a stored plan.
type Summary struct {
	PlanID     string `json:"plan_id"`
	Date       string `json:"date"`
	CreatedAt  string `json:"created_at,omitempty"`
	TotalTasks int    `json:"total_tasks"`
}

// Store is the persistence contract used by the planning tools. The
// store is the sole writer of persisted plans; nothing deletes a plan.
type Store interface {
	Create(ctx context.Context, p *DailyPlan) (string, error)
	Load(ctx context.Context, planID string) (*DailyPlan, error)
	Update(ctx context.Context, planID string, mutate func(*DailyPlan) error) (*DailyPlan, error)
	List(ctx context.Context) ([]Summary, error)
	Latest(ctx context.Context) (*DailyPlan, error)
}

// NewPlanID derives an identifier from the creation instant plus a
// short random suffix, so rapid creation within one second cannot
// collide while filenames stay sortable by recency.
func NewPlanID(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("plan_%s_%x", now.UTC().Format("20060102_150405"), u[:3])
}

type FileStoreConfig struct {
	Dir string `envconfig:"DIR" split_words:"true" default:"plans"`
}

// FileStoreOption customizes a FileStore.
type FileStoreOption func(*FileStore)

func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// FileStore persists one JSON document per plan inside a directory.
// Updates to the same plan id are serialized by a per-id mutex; a write
// either fully replaces the prior document or fails.
type FileStore struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(cfg FileStoreConfig, opts ...FileStoreOption) (*FileStore, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, errors.New("plans directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plans directory: %w", err)
	}

	s := &FileStore{
		dir:   dir,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, p *DailyPlan) (string, error) {
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

	lock := s.lockFor(p.PlanID)
	lock.Lock()
	defer lock.Unlock()

	path := s.planPath(p.PlanID)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: id=%s", ErrPlanConflict, p.PlanID)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat plan file: %w", err)
	}

	if err := s.writePlan(path, p); err != nil {
		return "", err
	}
	return p.PlanID, nil
}

func (s *FileStore) Load(ctx context.Context, planID string) (*DailyPlan, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, fmt.Errorf("%w: empty plan id", ErrPlanNotFound)
	}
	return s.readPlan(s.planPath(planID))
}

func (s *FileStore) Update(ctx context.Context, planID string, mutate func(*DailyPlan) error) (*DailyPlan, error) {
	if mutate == nil {
		return nil, errors.New("mutator is required")
	}

	lock := s.lockFor(planID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.readPlan(s.planPath(planID))
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.PlanID = current.PlanID
	next.Normalize()
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := s.writePlan(s.planPath(planID), next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read plans directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "plan_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		p, err := s.readPlan(filepath.Join(s.dir, name))
		if err != nil {
			// Unreadable files are skipped, not fatal to listing.
			continue
		}
		summaries = append(summaries, Summary{
			PlanID:     p.PlanID,
			Date:       p.Date,
			CreatedAt:  p.CreatedAt,
			TotalTasks: p.TotalTasks,
		})
	}

	// Identifiers embed the creation timestamp, so lexicographic
	// descending order is most-recent-first.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PlanID > summaries[j].PlanID
	})
	return summaries, nil
}

func (s *FileStore) Latest(ctx context.Context) (*DailyPlan, error) {
	summaries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: store is empty", ErrPlanNotFound)
	}
	return s.Load(ctx, summaries[0].PlanID)
}

func (s *FileStore) lockFor(planID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[planID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[planID] = lock
	}
	return lock
}

func (s *FileStore) planPath(planID string) string {
	return filepath.Join(s.dir, planID+".json")
}

func (s *FileStore) readPlan(path string) (*DailyPlan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	var p DailyPlan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan loaded from store: %w", err)
	}
	return &p, nil
}

// writePlan replaces the document atomically: full content goes to a
// temp file in the same directory, then rename swaps it in.
func (s *FileStore) writePlan(path string, p *DailyPlan) error {
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".plan-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp plan file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp plan file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp plan file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace plan file: %w", err)
	}
	return nil
}
