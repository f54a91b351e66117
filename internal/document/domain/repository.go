package domain

import (
	"time"

	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/stay"
	"gorm.io/gorm"
)

// ListQuery is a parsed ListFilter.
type ListQuery struct {
	Kind   Kind
	Query  string
	GiteID *snowflake.ID
	Numero string
	From   *stay.Date
	To     *stay.Date
	// AfterCreated and AfterID identify the last row of the previous page.
	AfterCreated *time.Time
	AfterID      snowflake.ID
	Limit        int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	Update(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (*Document, error)
	List(ctx context.Context, db *gorm.DB, q ListQuery) ([]Document, error)
	Delete(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) error
	UpdateStatus(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID, column, status string, at time.Time) error
}
