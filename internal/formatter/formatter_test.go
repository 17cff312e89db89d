package formatter

import (
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"cratedig/internal/models"
	tu "cratedig/internal/testing"
)

func testExport() *LibraryExport {
	rating := 8.6
	albums := []models.Album{
		{Name: "The Wall", Artists: "Pink Floyd", PrimaryArtist: "Pink Floyd",
			SpotifyID: "spotify_wall", AddedAt: "2024-03-01T12:00:00Z", Rating: &rating, Rated: true},
		{Name: "Obscure Album", Artists: "Unknown Artist", PrimaryArtist: "Unknown Artist", Rated: true},
		{Name: "Fresh Album", Artists: "New Artist", PrimaryArtist: "New Artist"},
	}
	return &LibraryExport{
		UserID: "test_user",
		Albums: albums,
		Stats:  models.ComputeStats(albums),
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testExport())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("generated CSV did not parse: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d records", len(records))
	}

	headers := strings.Join(records[0], ",")
	if headers != "Album,Artists,Rating,Spotify ID,Added At" {
		t.Errorf("unexpected headers: %s", headers)
	}

	if records[1][0] != "The Wall" || records[1][2] != "8.6" {
		t.Errorf("unexpected rated row: %v", records[1])
	}
	if records[2][2] != "none" {
		t.Errorf("expected checked album without rating to export as none, got %q", records[2][2])
	}
	if records[3][2] != "" {
		t.Errorf("expected unchecked album to export an empty rating, got %q", records[3][2])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testExport())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := string(data)

	for _, fragment := range []string{
		"# Album Library",
		"**Albums**: 3",
		"**Rated**: 1",
		"**Mean rating**: 8.6/10",
		"| 1 | The Wall | Pink Floyd | 8.6 |",
		"| 2 | Obscure Album | Unknown Artist | none |",
		"| 3 | Fresh Album | New Artist | - |",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("expected markdown to contain %q\ngot:\n%s", fragment, out)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testExport())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "Albums: 3") || !strings.Contains(out, "Rated: 1") {
		t.Errorf("expected summary lines, got:\n%s", out)
	}
	if !strings.Contains(out, "1. Pink Floyd - The Wall [8.6/10]") {
		t.Errorf("expected rated line, got:\n%s", out)
	}
	if !strings.Contains(out, "2. Unknown Artist - Obscure Album\n") {
		t.Errorf("expected unrated line without a score, got:\n%s", out)
	}
}

func TestWriteExports(t *testing.T) {
	t.Run("CSV With Stats Sidecar", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "library")

		result, err := WriteCSVExport(testExport(), base)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}

		tu.AssertFileExists(t, result.AlbumsFile)
		tu.AssertFileExists(t, result.StatsFile)

		stats := tu.MustReadFile(t, result.StatsFile)
		if !strings.Contains(stats, `"rated": 1`) {
			t.Errorf("expected stats JSON, got %s", stats)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "library.md")

		written, err := WriteMarkdownExport(testExport(), path)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %q, got %q", path, written)
		}
		tu.AssertFileExists(t, written)
	})

	t.Run("Text With Default Filename", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, t.TempDir())
		defer tu.MustChdir(t, wd)

		written, err := WriteTextExport(testExport(), "")
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if written != "test_user_albums.txt" {
			t.Errorf("expected default filename, got %q", written)
		}
		tu.AssertFileExists(t, written)
	})
}
