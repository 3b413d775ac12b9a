package sink

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/laytoneval/internal/model"
)

func TestJSONLSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	s, err := NewJSONL(path)
	if err != nil {
		t.Fatalf("NewJSONL failed: %v", err)
	}

	first := testRecord()
	second := &model.PuzzleRecord{DocumentID: "Empty", URL: "https://layton.fandom.com/wiki/Puzzle:Empty"}
	for _, rec := range []*model.PuzzleRecord{first, second} {
		if err := s.Write(context.Background(), rec); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"img":null`) || !strings.Contains(lines[0], `"picarats":20`) {
		t.Errorf("Unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[0], "Where's_My_House") {
		t.Errorf("Expected unescaped apostrophe: %s", lines[0])
	}

	records, err := ReadRecordsFile(path)
	if err != nil {
		t.Fatalf("ReadRecordsFile failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], first) {
		t.Errorf("Expected %+v, got %+v", first, records[0])
	}
	if records[1].Description != nil || records[1].Picarats != nil {
		t.Errorf("Expected absent fields to stay absent, got %+v", records[1])
	}
}

func TestReadRecords_Malformed(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(`{"document_id":"a","url":"u"}` + "\n{broken\n"))
	if err == nil {
		t.Fatal("Expected error for malformed line")
	}
	if len(records) != 1 {
		t.Errorf("Expected records before the bad line, got %d", len(records))
	}
}
