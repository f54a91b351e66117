package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/cache"
	"github.com/smallbiznis/rentaldocs/internal/clock"
	"github.com/smallbiznis/rentaldocs/internal/config"
	"github.com/smallbiznis/rentaldocs/internal/document/domain"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/lock"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/numbering"
	"github.com/smallbiznis/rentaldocs/internal/observability/logger"
	"github.com/smallbiznis/rentaldocs/internal/observability/metrics"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"github.com/smallbiznis/rentaldocs/internal/stay"
	"github.com/smallbiznis/rentaldocs/pkg/db"
	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Config    config.Config
	Clock     clock.Clock
	Repo      domain.Repository
	Gites     gitedomain.Repository
	Renderer  *renderer.Service
	Layouts   renderer.LayoutSource `optional:"true"`
	Artifacts *artifact.Store
	Previews  cache.PreviewCache `optional:"true"`
	Locker    lock.Locker        `optional:"true"`
	Metrics   *metrics.Metrics   `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	gites     gitedomain.Repository
	renderer  *renderer.Service
	layouts   renderer.LayoutSource
	artifacts *artifact.Store
	previews  cache.PreviewCache
	locker    lock.Locker
	metrics   *metrics.Metrics
	deposits  pricing.DepositResolver
}

func New(p Params) domain.Service {
	svc := &Service{
		db:        p.DB,
		log:       p.Log.Named("document.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		gites:     p.Gites,
		renderer:  p.Renderer,
		layouts:   p.Layouts,
		artifacts: p.Artifacts,
		previews:  p.Previews,
		locker:    p.Locker,
		metrics:   p.Metrics,
		deposits:  pricing.NewDepositResolver(p.Config.DefaultArrhesRate),
	}
	if svc.previews == nil {
		svc.previews = cache.NewMemoryPreviewCache(p.Config.PreviewCacheTTL)
	}
	if svc.locker == nil {
		svc.locker = lock.NewLocalLocker()
	}
	if svc.layouts == nil {
		svc.layouts = renderer.StaticLayout(renderer.DefaultLayout())
	}
	return svc
}

func (s *Service) Create(ctx context.Context, kind domain.Kind, payload domain.Payload) (domain.Document, error) {
	if !kind.Valid() {
		return domain.Document{}, domain.ErrInvalidKind
	}
	d, err := s.resolveCommit(ctx, payload)
	if err != nil {
		return domain.Document{}, err
	}

	now := s.clock.Now()
	doc := domain.Document{
		ID:           s.genID.Generate(),
		Kind:         kind,
		DateCreation: now,
	}
	applyDraft(&doc, kind, d, now)

	// numbering, row and PDF succeed or fail together
	err = s.saveWithArtifact(ctx, func(tx *gorm.DB) (string, []byte, error) {
		number, err := numbering.Next(ctx, tx, d.gite.ID, kind.Sequence(), d.gite.PrefixeContrat, d.start.Year())
		if err != nil {
			return "", nil, err
		}
		doc.Numero = number
		doc.PdfPath = s.artifacts.Path(number, *d.start)
		if err := s.repo.Insert(ctx, tx, &doc); err != nil {
			return "", nil, fmt.Errorf("insert %s: %w", kind, err)
		}
		pdf, err := s.renderArtifact(ctx, kind, number, d)
		return doc.PdfPath, pdf, err
	})
	if err != nil {
		return domain.Document{}, err
	}

	doc.Gite = &d.gite
	log := logger.WithDocument(s.log, kind.String(), doc.Numero)
	log.Info("document created", zap.String("document_id", doc.ID.String()), zap.String("gite_id", d.gite.ID.String()))
	s.metrics.RecordDocumentCommitted(ctx, kind.String(), "create")
	return withTotals(doc, d), nil
}

func (s *Service) Update(ctx context.Context, kind domain.Kind, id string, payload domain.Payload) (domain.Document, error) {
	existing, err := s.find(ctx, kind, id)
	if err != nil {
		return domain.Document{}, err
	}
	d, err := s.resolveCommit(ctx, payload)
	if err != nil {
		return domain.Document{}, err
	}

	// statuses are managed through their own endpoints unless the form sets them
	if payload.StatutPaiement == "" {
		d.paymentStatus = orDefault(existing.StatutPaiement, domain.PaymentUnpaid)
	}
	if payload.StatutPaiementArrhes == "" {
		d.depositStatus = orDefault(existing.StatutPaiementArrhes, domain.DepositNotReceived)
	}

	doc := *existing
	previousPath := doc.PdfPath
	now := s.clock.Now()
	applyDraft(&doc, kind, d, now)
	doc.PdfPath = s.artifacts.Path(doc.Numero, *d.start)
	doc.Gite = nil

	pdf, err := s.renderArtifact(ctx, kind, doc.Numero, d)
	if err != nil {
		return domain.Document{}, err
	}
	err = s.saveWithArtifact(ctx, func(tx *gorm.DB) (string, []byte, error) {
		if err := s.repo.Update(ctx, tx, &doc); err != nil {
			return "", nil, fmt.Errorf("update %s: %w", kind, err)
		}
		return doc.PdfPath, pdf, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	doc.Gite = &d.gite

	if previousPath != "" && previousPath != doc.PdfPath {
		if err := s.artifacts.Remove(previousPath); err != nil {
			s.log.Warn("failed to remove moved artifact", zap.String("path", previousPath), zap.Error(err))
		}
	}
	s.metrics.RecordDocumentCommitted(ctx, kind.String(), "update")
	return withTotals(doc, d), nil
}

func (s *Service) Get(ctx context.Context, kind domain.Kind, id string) (domain.Document, error) {
	doc, err := s.find(ctx, kind, id)
	if err != nil {
		return domain.Document{}, err
	}
	return *doc, nil
}

func (s *Service) List(ctx context.Context, kind domain.Kind, filter domain.ListFilter) ([]domain.Document, pagination.PageInfo, error) {
	if !kind.Valid() {
		return nil, pagination.PageInfo{}, domain.ErrInvalidKind
	}
	q, err := s.listQuery(kind, filter)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	limit := filter.Size()
	q.Limit = limit + 1
	docs, err := s.repo.List(ctx, s.db, q)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	page, info := pagination.Page(docs, limit, func(d domain.Document) pagination.Cursor {
		return pagination.Cursor{
			ID:        d.ID.String(),
			CreatedAt: d.DateCreation.UTC().Format(time.RFC3339Nano),
		}
	})
	if page == nil {
		page = []domain.Document{}
	}
	return page, info, nil
}

func (s *Service) Delete(ctx context.Context, kind domain.Kind, id string) error {
	doc, err := s.find(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, kind, doc.ID); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if err := s.artifacts.Remove(doc.PdfPath); err != nil {
		s.log.Warn("failed to remove artifact", zap.String("path", doc.PdfPath), zap.Error(err))
	}
	logger.WithDocument(s.log, kind.String(), doc.Numero).Info("document deleted")
	return nil
}

// SetPaymentStatus marks an invoice as settled or not. The change makes the
// stored PDF stale since it prints the payment status.
func (s *Service) SetPaymentStatus(ctx context.Context, id, status string) (domain.Document, error) {
	if !validPaymentStatus(status) {
		return domain.Document{}, domain.ErrInvalidPaymentStatus
	}
	return s.setStatus(ctx, domain.KindInvoice, id, "statut_paiement", status)
}

func (s *Service) SetDepositStatus(ctx context.Context, id, status string) (domain.Document, error) {
	if !validDepositStatus(status) {
		return domain.Document{}, domain.ErrInvalidDepositStatus
	}
	return s.setStatus(ctx, domain.KindContract, id, "statut_paiement_arrhes", status)
}

func (s *Service) setStatus(ctx context.Context, kind domain.Kind, id, column, status string) (domain.Document, error) {
	docID, err := parseID(id)
	if err != nil {
		return domain.Document{}, err
	}
	err = s.repo.UpdateStatus(ctx, s.db, kind, docID, column, status, s.clock.Now())
	if db.IsNotFound(err) {
		return domain.Document{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("update %s: %w", column, err)
	}
	return s.Get(ctx, kind, id)
}

func (s *Service) find(ctx context.Context, kind domain.Kind, id string) (*domain.Document, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	docID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.repo.FindByID(ctx, s.db, kind, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (s *Service) listQuery(kind domain.Kind, filter domain.ListFilter) (domain.ListQuery, error) {
	q := domain.ListQuery{
		Kind:   kind,
		Query:  filter.Query,
		Numero: filter.Numero,
	}
	if filter.GiteID != "" {
		giteID, err := snowflake.ParseString(filter.GiteID)
		if err != nil {
			return q, domain.ErrInvalidFilter
		}
		q.GiteID = &giteID
	}
	var err error
	if q.From, err = parseFilterDate(filter.From); err != nil {
		return q, err
	}
	if q.To, err = parseFilterDate(filter.To); err != nil {
		return q, err
	}

	cursor, err := pagination.DecodeCursor(filter.PageToken)
	if err != nil {
		return q, err
	}
	if cursor != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return q, pagination.ErrInvalidPageToken
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return q, pagination.ErrInvalidPageToken
		}
		q.AfterCreated = &createdAt
		q.AfterID = afterID
	}
	return q, nil
}

// applyDraft copies the snapshot of a priced draft onto doc. Invoices keep
// no guarantees.
func applyDraft(doc *domain.Document, kind domain.Kind, d draft, now time.Time) {
	doc.GiteID = d.gite.ID
	doc.LocataireNom = d.tenantName
	doc.LocataireAdresse = d.tenantAddress
	doc.LocataireTel = d.tenantPhone
	doc.NbAdultes = d.params.Adults
	doc.NbEnfants = d.params.Children
	doc.DateDebut = *d.start
	doc.DateFin = *d.end
	doc.HeureArrivee = d.arrival
	doc.HeureDepart = d.departure
	doc.NbNuits = d.quote.Totals.Nights
	doc.PrixParNuit = money.Decimal(d.params.NightlyRate)
	doc.RemiseMontant = money.Decimal(d.params.Discount)
	doc.TaxeSejourCalculee = money.Decimal(d.quote.Totals.TouristTax)
	doc.Options = datatypes.NewJSONType(d.quote.Options)
	doc.ArrhesMontant = money.Decimal(d.quote.Deposit)
	doc.ArrhesDateLimite = d.depositDue
	doc.SoldeMontant = money.Decimal(d.quote.Totals.BalanceDue)
	doc.Clauses = datatypes.JSONMap(d.clauses)
	if doc.Clauses == nil {
		doc.Clauses = datatypes.JSONMap{}
	}
	doc.Notes = d.notes
	doc.DateDerniereModif = now

	if kind.Invoice() {
		doc.CautionMontant = decimal.Zero
		doc.ChequeMenageMontant = decimal.Zero
		doc.AfficherCautionPhrase = false
		doc.AfficherChequeMenagePhrase = false
		doc.StatutPaiement = d.paymentStatus
		doc.StatutPaiementArrhes = ""
		return
	}
	doc.CautionMontant = money.Decimal(d.security)
	doc.ChequeMenageMontant = money.Decimal(d.cleaning)
	doc.AfficherCautionPhrase = d.showSecurity
	doc.AfficherChequeMenagePhrase = d.showCleaning
	doc.StatutPaiementArrhes = d.depositStatus
	doc.StatutPaiement = ""
}

func withTotals(doc domain.Document, d draft) domain.Document {
	totals := d.quote.Totals
	doc.Totals = &totals
	return doc
}

func parseFilterDate(raw string) (*stay.Date, error) {
	d, err := stay.ParseOptional(raw)
	if err != nil {
		return nil, domain.ErrInvalidFilter
	}
	return d, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(value)
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
