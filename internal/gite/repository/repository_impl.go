package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/numbering"
	"gorm.io/gorm"
)

// documentsTable is owned by the document package; the cascade only needs
// gite_id and pdf_path from it.
const documentsTable = "rental_documents"

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, gite *domain.Gite) error {
	return db.WithContext(ctx).Create(gite).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, gite *domain.Gite) error {
	return db.WithContext(ctx).Save(gite).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Gite, error) {
	var gite domain.Gite
	err := db.WithContext(ctx).Where("id = ?", id).First(&gite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gite, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.ListItem, error) {
	var items []domain.ListItem
	err := db.WithContext(ctx).
		Model(&domain.Gite{}).
		Select(`gites.*,
			(SELECT COUNT(*) FROM ` + documentsTable + ` d WHERE d.gite_id = gites.id AND d.kind = 'contract') AS contrats_count,
			(SELECT COUNT(*) FROM ` + documentsTable + ` d WHERE d.gite_id = gites.id AND d.kind = 'invoice') AS factures_count`).
		Order("gites.nom asc").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Prefixes(ctx context.Context, db *gorm.DB) ([]string, error) {
	var prefixes []string
	err := db.WithContext(ctx).Model(&domain.Gite{}).Pluck("prefixe_contrat", &prefixes).Error
	return prefixes, err
}

func (r *repo) DeleteCascade(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]string, error) {
	var paths []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(documentsTable).
			Where("gite_id = ? AND pdf_path <> ''", id).
			Pluck("pdf_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+documentsTable+" WHERE gite_id = ?", id).Error; err != nil {
			return err
		}
		if err := numbering.DeleteForGite(ctx, tx, id); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Gite{}).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
