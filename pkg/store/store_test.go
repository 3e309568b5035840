package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/conceptweave/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cv.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func sampleRecords() []model.RawConceptRecord {
	return []model.RawConceptRecord{
		{Name: "Limit", Outgoing: []string{"Derivative"}},
		{Name: "Derivative", Incoming: []string{"Limit"}, Outgoing: []string{"Integral"}},
		{Name: "Integral"},
	}
}

func TestSaveAndLoadProject(t *testing.T) {
	s := openTestStore(t)

	p := model.Project{ID: "p1", Title: "Calculus", CreatedAt: time.Now()}
	if err := s.SaveProject(p, sampleRecords()); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	got, records, err := s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if got.Title != "Calculus" {
		t.Errorf("expected title Calculus, got %q", got.Title)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Name != "Limit" || len(records[0].Outgoing) != 1 {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].Incoming[0] != "Limit" {
		t.Errorf("expected Derivative incoming Limit, got %v", records[1].Incoming)
	}
}

func TestLoadMissingProject(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.LoadProject("nope"); err == nil {
		t.Fatal("expected error for missing project")
	}
}

func TestAnnotations(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProject(model.Project{ID: "p1", Title: "T"}, sampleRecords()); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	if err := s.SetNotes("p1", "Derivative", "rate of change"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if err := s.SetConfidence("p1", "Derivative", intPtr(4)); err != nil {
		t.Fatalf("SetConfidence: %v", err)
	}

	_, records, err := s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	var found bool
	for _, rec := range records {
		if rec.Name == "Derivative" {
			found = true
			if rec.Notes != "rate of change" {
				t.Errorf("expected notes carried, got %q", rec.Notes)
			}
			if rec.Confidence == nil || *rec.Confidence != 4 {
				t.Errorf("expected confidence 4, got %v", rec.Confidence)
			}
		}
	}
	if !found {
		t.Fatal("Derivative record missing")
	}
}

func TestAnnotationsSurviveResave(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProject(model.Project{ID: "p1", Title: "T"}, sampleRecords()); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if err := s.SetNotes("p1", "Limit", "approaches a value"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if err := s.SetConfidence("p1", "Limit", intPtr(2)); err != nil {
		t.Fatalf("SetConfidence: %v", err)
	}

	// Re-saving the same records without annotations must not wipe them.
	if err := s.SaveProject(model.Project{ID: "p1", Title: "T"}, sampleRecords()); err != nil {
		t.Fatalf("re-SaveProject: %v", err)
	}
	_, records, err := s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	for _, rec := range records {
		if rec.Name == "Limit" {
			if rec.Notes != "approaches a value" {
				t.Errorf("expected notes preserved across resave, got %q", rec.Notes)
			}
			if rec.Confidence == nil || *rec.Confidence != 2 {
				t.Errorf("expected confidence preserved across resave, got %v", rec.Confidence)
			}
		}
	}
}

func TestClearAnnotations(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProject(model.Project{ID: "p1", Title: "T"}, sampleRecords()); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if err := s.SetConfidence("p1", "Limit", intPtr(5)); err != nil {
		t.Fatalf("SetConfidence: %v", err)
	}
	if err := s.SetConfidence("p1", "Limit", nil); err != nil {
		t.Fatalf("clear confidence: %v", err)
	}
	_, records, err := s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	for _, rec := range records {
		if rec.Name == "Limit" && rec.Confidence != nil {
			t.Errorf("expected cleared confidence, got %v", *rec.Confidence)
		}
	}
}

func TestConfidenceValidation(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProject(model.Project{ID: "p1", Title: "T"}, sampleRecords()); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if err := s.SetConfidence("p1", "Limit", intPtr(6)); err == nil {
		t.Error("expected error for confidence 6")
	}
	if err := s.SetConfidence("p1", "Limit", intPtr(0)); err == nil {
		t.Error("expected error for confidence 0")
	}
}

func TestAnnotateUnknownConcept(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProject(model.Project{ID: "p1", Title: "T"}, sampleRecords()); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if err := s.SetNotes("p1", "Quaternion", "n/a"); err == nil {
		t.Error("expected error for unknown concept")
	}
}

func TestListAndDeleteProjects(t *testing.T) {
	s := openTestStore(t)
	older := time.Now().Add(-time.Hour)
	if err := s.SaveProject(model.Project{ID: "a", Title: "A", CreatedAt: older}, nil); err != nil {
		t.Fatalf("SaveProject a: %v", err)
	}
	if err := s.SaveProject(model.Project{ID: "b", Title: "B", CreatedAt: time.Now()}, nil); err != nil {
		t.Fatalf("SaveProject b: %v", err)
	}

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	if projects[0].ID != "b" {
		t.Errorf("expected most recent project first, got %s", projects[0].ID)
	}

	if err := s.DeleteProject("a"); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	projects, err = s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects after delete: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "b" {
		t.Errorf("expected only project b, got %+v", projects)
	}
	if err := s.DeleteProject("a"); err == nil {
		t.Error("expected error deleting missing project")
	}
}

func TestUpdateTitle(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProject(model.Project{ID: "p1", Title: "Old"}, nil); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if err := s.UpdateTitle("p1", "New"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	p, _, err := s.LoadProject("p1")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Title != "New" {
		t.Errorf("expected title New, got %q", p.Title)
	}
	if err := s.UpdateTitle("p1", "  "); err == nil {
		t.Error("expected error for blank title")
	}
	if err := s.UpdateTitle("missing", "X"); err == nil {
		t.Error("expected error for missing project")
	}
}
