package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aidin1998/wallet_system/pkg/models"
)

// Format is an output encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name case-insensitively
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("export: unsupported format %q", name)
	}
}

// Row is one exported transaction. Money is kept as text so no precision is
// lost in any format.
type Row struct {
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Type        string `json:"type" yaml:"type"`
	Amount      string `json:"amount" yaml:"amount"`
	Balance     string `json:"balance" yaml:"balance"`
	Description string `json:"description" yaml:"description"`
}

var header = []string{"id", "date", "type", "amount", "balance", "description"}

// Rows converts transactions to export rows
func Rows(txs []models.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		kind := tx.Type
		if kind == "" {
			kind = models.TransactionDebit
			if tx.IsCredit() {
				kind = models.TransactionCredit
			}
		}
		rows = append(rows, Row{
			ID:          tx.ID,
			Date:        tx.Date,
			Type:        string(kind),
			Amount:      tx.Amount.String(),
			Balance:     tx.Balance.String(),
			Description: tx.Description,
		})
	}
	return rows
}

// Write encodes the transactions to w
func Write(w io.Writer, format Format, txs []models.Transaction) error {
	rows := Rows(txs)

	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{r.ID, r.Date, r.Type, r.Amount, r.Balance, r.Description}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("export: unsupported format %q", format)
	}
}

// WriteSummary encodes s as JSON or YAML. CSV is not meaningful for a single
// record and falls back to YAML.
func WriteSummary(w io.Writer, format Format, s Summary) error {
	out := map[string]any{
		"count":       s.Count,
		"credits":     s.Credits,
		"debits":      s.Debits,
		"totalCredit": s.TotalCredit.String(),
		"totalDebit":  s.TotalDebit.String(),
		"net":         s.Net.String(),
	}
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
