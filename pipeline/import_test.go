package pipeline_test

import (
	"context"
	"testing"

	"github.com/beliefmap/pixels-go/embedder/mock"
	"github.com/beliefmap/pixels-go/pipeline"
	"github.com/beliefmap/pixels-go/pixel"
	"github.com/beliefmap/pixels-go/store/chromem"
)

func importDraft(statement string) *pipeline.ImportDraft {
	return &pipeline.ImportDraft{
		Statement:       statement,
		Context:         "Historical journal entry",
		ColorStage:      &pixel.StageVector{Green: 0.6},
		ConfidenceScore: 0.5,
	}
}

func TestImportStoresEntries(t *testing.T) {
	ctx := context.Background()
	s, err := chromem.New(mock.New())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	importer := pipeline.NewImporter(s)

	entries := []pipeline.ImportEntry{
		{Pixel: importDraft("People are mostly kind"), Timestamp: "2024-01-15T10:30:00Z"},
		{Pixel: importDraft("Community matters more than success")},
	}

	summary := importer.Import(ctx, "user-1", entries)
	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 2 succeeded", summary)
	}

	all, err := s.GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all.Len() != 2 {
		t.Fatalf("stored = %d, want 2", all.Len())
	}

	for i, md := range all.Metadatas {
		if md.ChatID != "" || md.UserEmail != "" {
			t.Errorf("entry %d: imports must have empty provenance, got %+v", i, md)
		}
		if md.Timestamp == "" {
			t.Errorf("entry %d: timestamp missing", i)
		}
	}
}

func TestImportDefaultsDocumentText(t *testing.T) {
	ctx := context.Background()
	s, err := chromem.New(mock.New())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	importer := pipeline.NewImporter(s)

	summary := importer.Import(ctx, "user-1", []pipeline.ImportEntry{
		{Pixel: importDraft("Rules exist for a reason")},
	})
	if summary.Succeeded != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	all, err := s.GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	want := "context: Historical journal entry\nstatement: Rules exist for a reason"
	if all.Documents[0] != want {
		t.Errorf("document = %q, want canonical encoding %q", all.Documents[0], want)
	}
}

func TestImportIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	s, err := chromem.New(mock.New())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	importer := pipeline.NewImporter(s)

	badStage := importDraft("out of range")
	badStage.ColorStage = &pixel.StageVector{Red: 2}

	entries := []pipeline.ImportEntry{
		{Pixel: importDraft("first good entry")},
		{Pixel: &pipeline.ImportDraft{Context: "no statement", ColorStage: &pixel.StageVector{}}},
		{Pixel: importDraft("bad timestamp"), Timestamp: "yesterday"},
		{Pixel: badStage},
		{Pixel: nil},
		{Pixel: importDraft("second good entry")},
	}

	summary := importer.Import(ctx, "user-1", entries)
	if summary.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", summary.Succeeded)
	}
	if summary.Failed != 4 {
		t.Errorf("failed = %d, want 4", summary.Failed)
	}
	if summary.Total != 6 {
		t.Errorf("total = %d, want 6", summary.Total)
	}

	all, err := s.GetAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if all.Len() != 2 {
		t.Errorf("stored = %d, want 2 (failures must not block other entries)", all.Len())
	}
}
