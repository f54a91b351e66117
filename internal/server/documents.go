package server

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	"github.com/smallbiznis/rentaldocs/internal/export"
	obslogger "github.com/smallbiznis/rentaldocs/internal/observability/logger"
	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
)

type previewFormat int

const (
	previewHTML previewFormat = iota
	previewPDF
)

type paymentStatusRequest struct {
	StatutPaiement string `json:"statut_paiement" binding:"required"`
}

type depositStatusRequest struct {
	StatutPaiementArrhes string `json:"statut_paiement_arrhes" binding:"required"`
}

func (s *Server) ListDocuments(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseListFilter(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		docs, pageInfo, err := s.documentSvc.List(c.Request.Context(), kind, filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": docs, "page_info": pageInfo})
	}
}

// ExportDocuments writes every document matching the filters, ignoring pagination.
func (s *Server) ExportDocuments(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseListFilter(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		docs, err := s.listAll(c.Request.Context(), kind, filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		body, err := export.Documents(kind, docs)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename(kind)}))
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, export.ContentType, body)
	}
}

func (s *Server) listAll(ctx context.Context, kind documentdomain.Kind, filter documentdomain.ListFilter) ([]documentdomain.Document, error) {
	filter.PageToken = ""
	filter.PageSize = pagination.MaxPageSize

	var all []documentdomain.Document
	for {
		docs, pageInfo, err := s.documentSvc.List(ctx, kind, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
		if !pageInfo.HasMore || pageInfo.NextPageToken == "" {
			return all, nil
		}
		filter.PageToken = pageInfo.NextPageToken
	}
}

// PreviewDocument renders an unsaved form. The overflow flags travel as
// headers so the body stays the raw markup or PDF.
func (s *Server) PreviewDocument(kind documentdomain.Kind, format previewFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req documentdomain.Payload
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, bindError(err))
			return
		}

		var (
			preview documentdomain.Preview
			err     error
		)
		if format == previewPDF {
			preview, err = s.documentSvc.PreviewPDF(c.Request.Context(), kind, req)
		} else {
			preview, err = s.documentSvc.PreviewHTML(c.Request.Context(), kind, req)
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		prefix := kind.HeaderPrefix()
		c.Header(prefix+"-Overflow", boolHeader(preview.OverflowBefore))
		c.Header(prefix+"-Overflow-After", boolHeader(preview.OverflowAfter))
		c.Header(prefix+"-Compact", boolHeader(preview.CompactApplied))
		c.Header("Cache-Control", "no-store")
		if generation := strings.TrimSpace(c.GetHeader(obslogger.PreviewGenerationHeader)); generation != "" {
			c.Header(obslogger.PreviewGenerationHeader, generation)
		}
		c.Data(http.StatusOK, preview.ContentType, preview.Body)
	}
}

func (s *Server) CreateDocument(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req documentdomain.Payload
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, bindError(err))
			return
		}

		doc, err := s.documentSvc.Create(c.Request.Context(), kind, req)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"data": doc})
	}
}

func (s *Server) GetDocument(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := s.documentSvc.Get(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": doc})
	}
}

func (s *Server) UpdateDocument(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req documentdomain.Payload
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, bindError(err))
			return
		}

		doc, err := s.documentSvc.Update(c.Request.Context(), kind, c.Param("id"), req)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": doc})
	}
}

func (s *Server) DeleteDocument(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.documentSvc.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func (s *Server) RegenerateDocument(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.documentSvc.Regenerate(c.Request.Context(), kind, c.Param("id")); err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
	}
}

// DownloadDocument serves the stored PDF, rebuilding it first when stale.
func (s *Server) DownloadDocument(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := s.documentSvc.Artifact(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.Filename}))
		c.File(file.Path)
	}
}

func (s *Server) SetPaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	doc, err := s.documentSvc.SetPaymentStatus(c.Request.Context(), c.Param("id"), req.StatutPaiement)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

func (s *Server) SetDepositStatus(c *gin.Context) {
	var req depositStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	doc, err := s.documentSvc.SetDepositStatus(c.Request.Context(), c.Param("id"), req.StatutPaiementArrhes)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}
