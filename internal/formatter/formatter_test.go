package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spindle/internal/models"
)

func sampleExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          "pl1",
			Name:        "Morning Mix",
			Description: "wake up songs",
			URI:         "spotify:playlist:pl1",
			TrackCount:  2,
			Public:      true,
		},
		Tracks: []models.Track{
			{ID: "t1", Title: "One", Artist: "A", Album: "X", DurationMS: 65000, Playable: true, URI: "spotify:track:t1"},
			{ID: "t2", Title: "Two", Artist: "B", Album: "", DurationMS: 3723000, Playable: false, URI: "spotify:track:t2"},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleExport())
	if err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][4] != "Duration" {
		t.Errorf("unexpected headers: %v", records[0])
	}
	if records[1][4] != "01:05" {
		t.Errorf("expected duration 01:05, got %s", records[1][4])
	}
	if records[2][4] != "01:02:03" {
		t.Errorf("expected duration 01:02:03, got %s", records[2][4])
	}
	if records[2][5] != "no" {
		t.Errorf("expected unplayable marker, got %s", records[2][5])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleExport(), "cover.jpg")
	if err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# Morning Mix",
		"![Cover](cover.jpg)",
		"**Description**: wake up songs",
		"**Tracks**: 2",
		"1. A - One (X) [01:05]",
		"2. B - Two [01:02:03] _unavailable_",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleExport())
	if err != nil {
		t.Fatalf("ExportToText failed: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "Playlist: Morning Mix") {
		t.Errorf("text missing playlist name:\n%s", text)
	}
	if !strings.Contains(text, "1. A - One") || !strings.Contains(text, "2. B - Two") {
		t.Errorf("text missing tracks:\n%s", text)
	}
}

func TestWriteCSVExport(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "pl1")

	result, err := WriteCSVExport(sampleExport(), base)
	if err != nil {
		t.Fatalf("WriteCSVExport failed: %v", err)
	}

	if _, err := os.Stat(result.TracksFile); err != nil {
		t.Errorf("tracks file missing: %v", err)
	}

	metadata, err := os.ReadFile(result.MetadataFile)
	if err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}
	var playlist models.Playlist
	if err := json.Unmarshal(metadata, &playlist); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if playlist.Name != "Morning Mix" {
		t.Errorf("metadata name = %s", playlist.Name)
	}
}

func TestWriteTextExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pl1_tracks.txt")

	written, err := WriteTextExport(sampleExport(), path)
	if err != nil {
		t.Fatalf("WriteTextExport failed: %v", err)
	}
	if written != path {
		t.Errorf("returned path %s, want %s", written, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("text file missing: %v", err)
	}
}

func TestWriteMarkdownExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pl1")

	result, err := WriteMarkdownExport(sampleExport(), dir, "")
	if err != nil {
		t.Fatalf("WriteMarkdownExport failed: %v", err)
	}

	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file without cover, got %d", len(result.Files))
	}
	if filepath.Base(result.Files[0]) != "README.md" {
		t.Errorf("unexpected file: %s", result.Files[0])
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export_manifest.json")

	manifest := Manifest{
		ExportedAt:      time.Now(),
		Format:          "csv",
		OutputDirectory: dir,
		TotalPlaylists:  2,
		Successful:      1,
		Failed:          1,
		Entries: []ManifestEntry{
			{PlaylistID: "pl1", PlaylistName: "Morning Mix", Success: true, Files: []string{"pl1_tracks.csv"}},
			{PlaylistID: "pl2", PlaylistName: "Unknown (pl2)", Success: false, Error: "failed to fetch playlist"},
		},
	}

	if err := WriteManifest(manifest, path); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}

	var parsed Manifest
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if parsed.TotalPlaylists != 2 || parsed.Successful != 1 || parsed.Failed != 1 {
		t.Errorf("manifest counts wrong: %+v", parsed)
	}
	if len(parsed.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(parsed.Entries))
	}
}
