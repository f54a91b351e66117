package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/document/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Omit("Gite").Create(doc).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Omit("Gite").Save(doc).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).
		Preload("Gite").
		Where("id = ? AND kind = ?", id, kind).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, q domain.ListQuery) ([]domain.Document, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Document{}).
		Preload("Gite").
		Where("kind = ?", q.Kind)

	if q.GiteID != nil {
		stmt = stmt.Where("gite_id = ?", *q.GiteID)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		stmt = stmt.Where("(LOWER(locataire_nom) LIKE ? ESCAPE '!' OR LOWER(numero) LIKE ? ESCAPE '!')", like, like)
	}
	if numero := strings.ToLower(strings.TrimSpace(q.Numero)); numero != "" {
		stmt = stmt.Where("LOWER(numero) LIKE ? ESCAPE '!'", "%"+escapeLike(numero)+"%")
	}
	if q.From != nil {
		stmt = stmt.Where("date_debut >= ?", *q.From)
	}
	if q.To != nil {
		stmt = stmt.Where("date_debut <= ?", *q.To)
	}
	if q.AfterCreated != nil {
		stmt = stmt.Where("(date_creation < ?) OR (date_creation = ? AND id < ?)", *q.AfterCreated, *q.AfterCreated, q.AfterID)
	}
	if q.Limit > 0 {
		stmt = stmt.Limit(q.Limit)
	}

	var docs []domain.Document
	if err := stmt.Order("date_creation desc").Order("id desc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("id = ? AND kind = ?", id, kind).
		Delete(&domain.Document{}).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID, column, status string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ? AND kind = ?", id, kind).
		Updates(map[string]any{
			column:                status,
			"date_derniere_modif": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(value string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(value)
}
