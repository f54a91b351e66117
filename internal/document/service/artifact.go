package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/document/domain"
	"github.com/smallbiznis/rentaldocs/internal/lock"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/observability/logger"
	"github.com/smallbiznis/rentaldocs/internal/render"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	regenerateLockTTL  = 30 * time.Second
	regenerateLockPoll = 100 * time.Millisecond
)

// renderArtifact renders the full PDF of a committed document.
func (s *Service) renderArtifact(ctx context.Context, kind domain.Kind, number string, d draft) ([]byte, error) {
	input := render.Build(s.source(kind, number, d))
	res, err := s.renderer.RenderPDF(ctx, renderer.Document{Input: input}, false)
	if err != nil {
		return nil, fmt.Errorf("render %s %s: %w", kind, number, err)
	}
	if res.OverflowAfter {
		logger.WithDocument(s.log, kind.String(), number).Warn("first page still overflows after compaction",
			zap.Strings("presets", res.Presets))
	}
	return res.PDF, nil
}

// saveWithArtifact runs save and writes the PDF it returns inside one
// transaction. A failed render or write rolls the row back, and a failed
// commit drops the written file so a download regenerates it from the row.
func (s *Service) saveWithArtifact(ctx context.Context, save func(tx *gorm.DB) (path string, pdf []byte, err error)) error {
	var written string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		path, pdf, err := save(tx)
		if err != nil {
			return err
		}
		if err := s.artifacts.Write(path, pdf); err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}
		written = path
		return nil
	})
	if err != nil && written != "" {
		if rmErr := s.artifacts.Remove(written); rmErr != nil {
			s.log.Warn("failed to remove orphaned artifact", zap.String("path", written), zap.Error(rmErr))
		}
	}
	return err
}

// Regenerate recomputes the snapshot of a stored document from its gîte's
// current tariffs and rewrites the PDF. The stored deposit is kept.
func (s *Service) Regenerate(ctx context.Context, kind domain.Kind, id string) error {
	doc, err := s.find(ctx, kind, id)
	if err != nil {
		return err
	}
	return s.regenerate(ctx, kind, *doc)
}

func (s *Service) regenerate(ctx context.Context, kind domain.Kind, doc domain.Document) error {
	d, err := s.draftFromDocument(doc)
	if err != nil {
		return err
	}

	doc.NbNuits = d.quote.Totals.Nights
	doc.TaxeSejourCalculee = money.Decimal(d.quote.Totals.TouristTax)
	doc.SoldeMontant = money.Decimal(d.quote.Totals.BalanceDue)
	doc.Options = datatypes.NewJSONType(d.quote.Options)
	previousPath := doc.PdfPath
	doc.PdfPath = s.artifacts.Path(doc.Numero, doc.DateDebut)
	doc.DateDerniereModif = s.clock.Now()

	pdf, err := s.renderArtifact(ctx, kind, doc.Numero, d)
	if err != nil {
		return err
	}

	gite := doc.Gite
	doc.Gite = nil
	err = s.saveWithArtifact(ctx, func(tx *gorm.DB) (string, []byte, error) {
		if err := s.repo.Update(ctx, tx, &doc); err != nil {
			return "", nil, fmt.Errorf("update %s: %w", kind, err)
		}
		return doc.PdfPath, pdf, nil
	})
	doc.Gite = gite
	if err != nil {
		return err
	}

	if previousPath != "" && previousPath != doc.PdfPath {
		_ = s.artifacts.Remove(previousPath)
	}
	logger.WithDocument(s.log, kind.String(), doc.Numero).Info("document regenerated")
	return nil
}

// Artifact returns the stored PDF, regenerating it first when it is missing
// or older than the document. Concurrent downloads regenerate once.
func (s *Service) Artifact(ctx context.Context, kind domain.Kind, id string) (domain.Artifact, error) {
	doc, err := s.find(ctx, kind, id)
	if err != nil {
		return domain.Artifact{}, err
	}

	stale, err := s.artifacts.IsStale(doc.PdfPath, doc.DateDerniereModif)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("stat artifact: %w", err)
	}
	if stale {
		key := "rentaldocs:artifact:" + doc.ID.String()
		_, err := lock.WithLock(ctx, s.locker, key, regenerateLockTTL, regenerateLockPoll, func(ctx context.Context) error {
			// another holder may have finished the work while we waited
			current, err := s.find(ctx, kind, id)
			if err != nil {
				return err
			}
			doc = current
			stale, err := s.artifacts.IsStale(current.PdfPath, current.DateDerniereModif)
			if err != nil || !stale {
				return err
			}
			if err := s.regenerate(ctx, kind, *current); err != nil {
				return err
			}
			doc, err = s.find(ctx, kind, id)
			return err
		})
		if err != nil {
			return domain.Artifact{}, err
		}
	}

	abs, err := s.artifacts.Resolve(doc.PdfPath)
	if err != nil {
		return domain.Artifact{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("stat artifact: %w", err)
	}
	return domain.Artifact{
		Path:     abs,
		Filename: artifact.DownloadName(kind.FilePrefix(), doc.Numero, doc.LocataireNom),
		ModTime:  info.ModTime(),
	}, nil
}
