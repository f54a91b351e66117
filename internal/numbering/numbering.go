package numbering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidPrefix = errors.New("invalid_prefix")
	ErrInvalidYear   = errors.New("invalid_year")
)

// Counter is the last number handed out for a gîte, document kind and year.
type Counter struct {
	GiteID     snowflake.ID `gorm:"column:gite_id;primaryKey;autoIncrement:false"`
	Kind       string       `gorm:"column:kind;primaryKey;size:16"`
	Year       int          `gorm:"column:year;primaryKey;autoIncrement:false"`
	LastNumber int          `gorm:"column:last_number;not null"`
}

func (Counter) TableName() string { return "document_counters" }

// Sequence describes one numbering series.
type Sequence struct {
	Kind  string
	Width int
}

// Format renders {prefix}-{year}-{seq} with seq zero-padded to width.
func Format(prefix string, year, seq, width int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, width, seq)
}

// Next increments the counter inside tx and returns the formatted number.
// Call it within the transaction that stores the document.
func Next(ctx context.Context, tx *gorm.DB, giteID snowflake.ID, seq Sequence, prefix string, year int) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrInvalidPrefix
	}
	if year <= 0 {
		return "", ErrInvalidYear
	}

	counter := Counter{GiteID: giteID, Kind: seq.Kind, Year: year, LastNumber: 1}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "gite_id"}, {Name: "kind"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_number": gorm.Expr("document_counters.last_number + 1"),
		}),
	}).Create(&counter).Error
	if err != nil {
		return "", fmt.Errorf("increment counter: %w", err)
	}

	var current Counter
	err = tx.WithContext(ctx).
		Where("gite_id = ? AND kind = ? AND year = ?", giteID, seq.Kind, year).
		First(&current).Error
	if err != nil {
		return "", fmt.Errorf("read counter: %w", err)
	}

	return Format(prefix, year, current.LastNumber, seq.Width), nil
}

// DeleteForGite drops every counter of a gîte.
func DeleteForGite(ctx context.Context, tx *gorm.DB, giteID snowflake.ID) error {
	return tx.WithContext(ctx).Where("gite_id = ?", giteID).Delete(&Counter{}).Error
}
