package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	"github.com/smallbiznis/rentaldocs/internal/stay"
	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
)

type documentListQuery struct {
	pagination.Pagination
	Query  string `form:"q"`
	GiteID string `form:"giteId"`
	Numero string `form:"numero"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// parseListFilter reads the list and export query string.
func parseListFilter(c *gin.Context) (documentdomain.ListFilter, error) {
	var query documentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return documentdomain.ListFilter{}, bindError(err)
	}

	if _, err := stay.ParseOptional(query.From); err != nil {
		return documentdomain.ListFilter{}, newValidationError("from", "invalid_from", messageInvalid)
	}
	if _, err := stay.ParseOptional(query.To); err != nil {
		return documentdomain.ListFilter{}, newValidationError("to", "invalid_to", messageInvalid)
	}

	return documentdomain.ListFilter{
		Query:      strings.TrimSpace(query.Query),
		GiteID:     strings.TrimSpace(query.GiteID),
		Numero:     strings.TrimSpace(query.Numero),
		From:       strings.TrimSpace(query.From),
		To:         strings.TrimSpace(query.To),
		Pagination: query.Pagination,
	}, nil
}

func boolHeader(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
