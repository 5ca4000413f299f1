// package formatter provides functions to export link data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
)

// ExportToCSV converts links to CSV format with columns: Code, ShortURL, OriginalURL, Visits, CreatedAt
func ExportToCSV(links []services.Link) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Code", "ShortURL", "OriginalURL", "Visits", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, link := range links {
		record := []string{
			link.Code,
			link.ShortURL,
			link.Target,
			strconv.Itoa(link.Visits),
			formatTime(link.CreatedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts links to a Markdown document with a summary and a table
func ExportToMarkdown(links []services.Link, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Links"
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", len(links)))

	buf.WriteString("| Code | Short URL | Original URL | Visits | Created |\n")
	buf.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, link := range links {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s |\n",
			link.Code, link.ShortURL, link.Target, link.Visits, formatTime(link.CreatedAt)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts links to plain text format
func ExportToText(links []services.Link) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Links: %d\n\n", len(links)))
	for i, link := range links {
		buf.WriteString(fmt.Sprintf("%d. %s -> %s\n", i+1, link.Code, link.Target))
	}

	return buf.Bytes(), nil
}

// ToJSON generates a JSON representation of the links
func ToJSON(links []services.Link) ([]byte, error) {
	return shared.MarshalJSON(links, true)
}

// WriteExport writes links to a file in the given format and returns the path.
//
// Format is one of csv, markdown, txt, json (the default).
func WriteExport(links []services.Link, format, path string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(links)
		ext = ".csv"
	case "markdown":
		data, err = ExportToMarkdown(links, "")
		ext = ".md"
	case "txt":
		data, err = ExportToText(links)
		ext = ".txt"
	case "json", "":
		data, err = ToJSON(links)
		ext = ".json"
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate export: %w", err)
	}

	if path == "" {
		path = fmt.Sprintf("links_%d%s", time.Now().Unix(), ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
