package contact

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// csvHeader is the fixed column order for contact exports.
var csvHeader = []string{
	"id", "first_name", "last_name", "phone", "email",
	"channel", "status", "lead_source", "tags", "city", "country", "created_at",
}

// ExportCSV writes all non-deleted contacts as gzip-compressed CSV to w.
// Returns the number of exported rows.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	contacts, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load contacts: %w", err)
	}

	gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return 0, fmt.Errorf("init gzip: %w", err)
	}

	cw := csv.NewWriter(gz)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for i := range contacts {
		if err := cw.Write(exportRow(&contacts[i])); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("close gzip: %w", err)
	}

	return len(contacts), nil
}

func exportRow(c *Contact) []string {
	return []string{
		c.ID.String(),
		c.FirstName,
		strOrEmpty(c.LastName),
		strOrEmpty(c.Phone),
		strOrEmpty(c.Email),
		string(c.Channel),
		strOrEmpty(c.StatusSlug),
		strOrEmpty(c.LeadSourceSlug),
		strings.Join(c.Tags, ";"),
		strOrEmpty(c.City),
		strOrEmpty(c.Country),
		c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
