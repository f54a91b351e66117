package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, gite *Gite) error
	Update(ctx context.Context, db *gorm.DB, gite *Gite) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Gite, error)
	List(ctx context.Context, db *gorm.DB) ([]ListItem, error)
	Prefixes(ctx context.Context, db *gorm.DB) ([]string, error)
	// DeleteCascade removes the gîte with its documents and counters and
	// returns the artifact paths of the removed documents.
	DeleteCascade(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]string, error)
}
