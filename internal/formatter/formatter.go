// package formatter provides functions to export the album library to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"cratedig/internal/models"
	"cratedig/internal/shared"
)

// LibraryExport bundles a user's albums with their summary statistics for
// export.
type LibraryExport struct {
	UserID string              `json:"user_id"`
	Albums []models.Album      `json:"albums"`
	Stats  models.LibraryStats `json:"stats"`
}

func ratingCell(album models.Album) string {
	switch {
	case album.Rating != nil:
		return fmt.Sprintf("%.1f", *album.Rating)
	case album.Rated:
		return "none"
	default:
		return ""
	}
}

// ExportToCSV converts a LibraryExport to CSV format with columns: Album, Artists, Rating, Spotify ID, Added At
func ExportToCSV(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Album", "Artists", "Rating", "Spotify ID", "Added At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, album := range export.Albums {
		record := []string{
			album.Name,
			album.Artists,
			ratingCell(album),
			album.SpotifyID,
			album.AddedAt,
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

// ExportToMarkdown converts a LibraryExport to a Markdown table with a stats
// header.
func ExportToMarkdown(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Album Library\n\n")
	buf.WriteString(fmt.Sprintf("**Albums**: %d\n", len(export.Albums)))
	buf.WriteString(fmt.Sprintf("**Rated**: %d\n", export.Stats.Rated))
	if export.Stats.Rated > 0 {
		buf.WriteString(fmt.Sprintf("**Mean rating**: %.1f/10\n", export.Stats.Mean))
	}
	buf.WriteString("\n| # | Album | Artists | Rating |\n")
	buf.WriteString("|---|-------|---------|--------|\n")

	for i, album := range export.Albums {
		rating := ratingCell(album)
		if rating == "" {
			rating = "-"
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, album.Name, album.Artists, rating))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a LibraryExport to plain text format
func ExportToText(export *LibraryExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Albums: %d\n", len(export.Albums)))
	buf.WriteString(fmt.Sprintf("Rated: %d\n\n", export.Stats.Rated))

	for i, album := range export.Albums {
		line := fmt.Sprintf("%d. %s - %s", i+1, album.Artists, album.Name)
		if album.Rating != nil {
			line += fmt.Sprintf(" [%.1f/10]", *album.Rating)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ToStatsJSON generates a JSON representation of the library statistics
// (without albums)
func ToStatsJSON(stats models.LibraryStats) ([]byte, error) {
	return shared.MarshalJSON(stats, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	AlbumsFile string
	StatsFile  string
}

// WriteCSVExport exports the library to CSV with an accompanying stats JSON file.
//
// Defaults to the user ID as the base filename & creates {base}_albums.csv and {base}_stats.json
func WriteCSVExport(export *LibraryExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.UserID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	albumsFile := baseFilepath + "_albums.csv"
	if err := os.WriteFile(albumsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	statsJSON, err := ToStatsJSON(export.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to generate stats JSON: %w", err)
	}

	statsFile := baseFilepath + "_stats.json"
	if err := os.WriteFile(statsFile, statsJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write stats file: %w", err)
	}

	return &CSVExportResult{
		AlbumsFile: albumsFile,
		StatsFile:  statsFile,
	}, nil
}

// WriteMarkdownExport exports the library to a Markdown file.
//
// Defaults to {userID}_library.md as the filename.
func WriteMarkdownExport(export *LibraryExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_library.md", export.UserID)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports the library to plain text format.
//
// Defaults to {userID}_albums.txt as the filename.
func WriteTextExport(export *LibraryExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_albums.txt", export.UserID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
