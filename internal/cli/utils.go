// Package cli formats codectx results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/provider"
	"github.com/hyperjump/codectx/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text with a snippet of each file (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// snippetLines is how many lines of each matched file the text format shows.
const snippetLines = 12

const rule = "─────────────────────────────────────────────────────────"

// ParseOutputFormat validates a format name. The empty string selects OutputText.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", name)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\n", r.Rank, r.Score, r.Chunk.FilePath)
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
		for _, r := range response.Results {
			writeOneResult(w, r)
		}
		return nil
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", result.Rank, result.Score)
	fmt.Fprintf(w, "File: %s\n\n", result.Chunk.FilePath)
	snippet := utils.FirstLines(result.Chunk.Content, snippetLines)
	fmt.Fprint(w, snippet)
	if !strings.HasSuffix(snippet, "\n") {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// WriteAskResponse writes the provider's answer, followed by the context files in text mode.
func WriteAskResponse(w io.Writer, response *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintln(w, strings.TrimRight(response.Answer, "\n"))
	if format == OutputCompact || len(response.Context) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s\nContext (%s/%s):\n", rule, response.Provider, response.Model)
	for _, r := range response.Context {
		fmt.Fprintf(w, "  %.4f  %s\n", r.Score, r.Chunk.FilePath)
	}
	return nil
}

// WriteLoadResponse summarises an ingestion batch.
func WriteLoadResponse(w io.Writer, response *models.LoadResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "Loaded %d files (%d failed), store now holds %d chunks\n",
		response.Loaded, response.Failed, response.Total)
	for _, f := range response.Failures {
		fmt.Fprintf(w, "  failed: %s: %s\n", f.Path, utils.Truncate(f.Error, 200))
	}
	return nil
}

// WriteStatus writes a store status report.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "Chunks:      %d\n", status.Chunks)
	fmt.Fprintf(w, "Dimensions:  %d\n", status.Dimensions)
	fmt.Fprintf(w, "Backend:     %s\n", status.Backend)
	fmt.Fprintf(w, "Blob:        %s\n", status.BlobPath)
	fmt.Fprintf(w, "Disk usage:  %s\n", FormatBytes(status.DiskUsage))
	fmt.Fprintf(w, "Embedder:    %s\n", status.Embedder)
	if status.Provider != "" {
		fmt.Fprintf(w, "Provider:    %s\n", status.Provider)
	}
	if status.LoadError != "" {
		fmt.Fprintf(w, "Load error:  %s\n", status.LoadError)
	}
	if status.PersistError != "" {
		fmt.Fprintf(w, "Save error:  %s\n", status.PersistError)
	}
	return nil
}

// WriteModels lists provider models, one per line.
func WriteModels(w io.Writer, list []provider.Model, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, list)
	}
	for _, m := range list {
		if m.Name != "" && m.Name != m.ID {
			fmt.Fprintf(w, "%s\t%s\n", m.ID, m.Name)
			continue
		}
		fmt.Fprintln(w, m.ID)
	}
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
