package resume

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simonjohansson/jobboard/internal/model"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("resume not found")
	ErrTitleRequired = errors.New("title is required")
)

type record struct {
	ID        string `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Tags      datatypes.JSONMap
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (record) TableName() string {
	return "resumes"
}

// Catalog is the small resume registry the board links cards to.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(dbPath string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("auto migrate resumes: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func (c *Catalog) Create(ctx context.Context, title string, tags map[string]string) (model.Resume, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Resume{}, ErrTitleRequired
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.Resume{}, fmt.Errorf("generate id: %w", err)
	}
	rec := record{ID: id.String(), Title: title, Tags: toJSONMap(tags)}
	if err := c.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Resume{}, fmt.Errorf("create resume: %w", err)
	}
	return rec.toModel(), nil
}

func (c *Catalog) List(ctx context.Context) ([]model.Resume, error) {
	var recs []record
	if err := c.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	out := make([]model.Resume, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (model.Resume, error) {
	var rec record
	if err := c.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Resume{}, ErrNotFound
		}
		return model.Resume{}, fmt.Errorf("get resume: %w", err)
	}
	return rec.toModel(), nil
}

func (c *Catalog) ResolveTitle(ctx context.Context, id string) (string, bool) {
	r, err := c.Get(ctx, id)
	if err != nil {
		return "", false
	}
	return r.Title, true
}

// DeleteResume succeeds when the resume is already gone.
func (c *Catalog) DeleteResume(ctx context.Context, id string) error {
	if err := c.db.WithContext(ctx).Delete(&record{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	return nil
}

func (r record) toModel() model.Resume {
	out := model.Resume{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	if len(r.Tags) > 0 {
		out.Tags = make(map[string]string, len(r.Tags))
		for k, v := range r.Tags {
			out.Tags[k] = fmt.Sprint(v)
		}
	}
	return out
}

func toJSONMap(tags map[string]string) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	for k, v := range tags {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m[k] = strings.TrimSpace(v)
	}
	return m
}
