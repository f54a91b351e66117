package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smallbiznis/rentaldocs/internal/cache"
	"github.com/smallbiznis/rentaldocs/internal/document/domain"
	"github.com/smallbiznis/rentaldocs/internal/render"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"go.uber.org/zap"
)

const (
	formatHTML = "html"
	formatPDF  = "pdf"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePDF  = "application/pdf"
)

// PreviewHTML renders a draft without persisting anything.
func (s *Service) PreviewHTML(ctx context.Context, kind domain.Kind, payload domain.Payload) (domain.Preview, error) {
	return s.preview(ctx, kind, payload, formatHTML)
}

// PreviewPDF renders the first page of a draft as PDF.
func (s *Service) PreviewPDF(ctx context.Context, kind domain.Kind, payload domain.Payload) (domain.Preview, error) {
	return s.preview(ctx, kind, payload, formatPDF)
}

func (s *Service) preview(ctx context.Context, kind domain.Kind, payload domain.Payload, format string) (domain.Preview, error) {
	if !kind.Valid() {
		return domain.Preview{}, domain.ErrInvalidKind
	}
	d, err := s.resolvePreview(ctx, payload)
	if err != nil {
		return domain.Preview{}, err
	}
	input := render.Build(s.source(kind, "", d))

	key, keyErr := s.previewKey(kind, format, input)
	if keyErr == nil {
		if entry, ok := s.previews.Get(ctx, key); ok {
			return previewFromEntry(entry, format), nil
		}
	} else {
		s.log.Warn("preview key unavailable", zap.Error(keyErr))
	}

	doc := renderer.Document{Input: input, Preview: true}
	var entry cache.PreviewEntry
	switch format {
	case formatPDF:
		res, err := s.renderer.RenderPDF(ctx, doc, true)
		if err != nil {
			return domain.Preview{}, err
		}
		entry = cache.PreviewEntry{
			Body:           res.PDF,
			OverflowBefore: res.OverflowBefore,
			OverflowAfter:  res.OverflowAfter,
			CompactApplied: res.CompactApplied,
		}
	default:
		res, err := s.renderer.RenderHTML(ctx, doc)
		if err != nil {
			return domain.Preview{}, err
		}
		entry = cache.PreviewEntry{
			Body:           []byte(res.HTML),
			OverflowBefore: res.OverflowBefore,
			OverflowAfter:  res.OverflowAfter,
			CompactApplied: res.CompactApplied,
		}
	}

	if keyErr == nil {
		s.previews.Set(ctx, key, entry)
	}
	s.metrics.RecordPreview(ctx, kind.String(), format)
	return previewFromEntry(entry, format), nil
}

// previewKey covers everything that changes the rendered bytes: the
// formatted input and the active layout presets.
func (s *Service) previewKey(kind domain.Kind, format string, input render.Input) (string, error) {
	content, err := json.Marshal(struct {
		Input  render.Input    `json:"input"`
		Layout renderer.Layout `json:"layout"`
	}{input, s.layouts.Layout()})
	if err != nil {
		return "", fmt.Errorf("encode preview key: %w", err)
	}
	return cache.PreviewKey(kind.String(), format, content), nil
}

func previewFromEntry(e cache.PreviewEntry, format string) domain.Preview {
	contentType := contentTypeHTML
	if format == formatPDF {
		contentType = contentTypePDF
	}
	return domain.Preview{
		Body:           e.Body,
		ContentType:    contentType,
		OverflowBefore: e.OverflowBefore,
		OverflowAfter:  e.OverflowAfter,
		CompactApplied: e.CompactApplied,
	}
}
