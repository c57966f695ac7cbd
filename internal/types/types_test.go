package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/beccaroth/muse/internal/dates"
)

func TestProjectStatusValid(t *testing.T) {
	for _, s := range ProjectStatuses() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if ProjectStatus("Paused").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestStatusColumnOrder(t *testing.T) {
	// Kanban columns run left to right through the lifecycle.
	statuses := ProjectStatuses()
	for i := 1; i < len(statuses); i++ {
		if statuses[i].ColumnOrder() <= statuses[i-1].ColumnOrder() {
			t.Errorf("%q should sort after %q", statuses[i], statuses[i-1])
		}
	}
	if ProjectStatus("???").ColumnOrder() <= StatusDone.ColumnOrder() {
		t.Error("unknown status should sort last")
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityNow.Rank() >= PriorityNext.Rank() || PriorityNext.Rank() >= PrioritySomeday.Rank() {
		t.Error("priorities should rank Now < Next < Someday")
	}
	if !ProjectPriority("Next").Valid() {
		t.Error("Next should be valid")
	}
	if ProjectPriority("Eventually").Valid() {
		t.Error("unknown priority should be invalid")
	}
}

func TestProjectMarshalNilTypes(t *testing.T) {
	data, err := json.Marshal(Project{ID: "p1", Name: "Garden"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"project_types":[]`) {
		t.Errorf("nil types marshaled as: %s", data)
	}
}

func TestProjectDatesMarshalAsNullWhenUnset(t *testing.T) {
	data, err := json.Marshal(Project{ID: "p1", Name: "Garden"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"start_date":null`) {
		t.Errorf("unset start_date marshaled as: %s", data)
	}
}

func TestProjectPatchPartialDecode(t *testing.T) {
	var patch ProjectPatch
	if err := json.Unmarshal([]byte(`{"progress": 80}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if patch.Progress == nil || *patch.Progress != 80 {
		t.Errorf("progress = %v", patch.Progress)
	}
	if patch.Name != nil || patch.Status != nil || patch.StartDate != nil {
		t.Error("absent fields should stay nil")
	}
}

func TestSeedJSONFieldNames(t *testing.T) {
	seed := Seed{
		ID:        "s1",
		Title:     "Idea",
		Type:      "Hobby",
		DateAdded: dates.MustParse("2025-06-01"),
	}
	data, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"project_type":"Hobby"`) {
		t.Errorf("seed type field: %s", data)
	}
	if !strings.Contains(string(data), `"date_added":"2025-06-01"`) {
		t.Errorf("date_added field: %s", data)
	}
}

func TestCalendarTaskFlattensTask(t *testing.T) {
	ct := CalendarTask{
		Task:        Task{ID: "t1", ProjectID: "p1", Title: "Water"},
		ProjectName: "Garden",
	}
	data, err := json.Marshal(ct)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Embedded task fields sit at the top level next to the projection.
	if !strings.Contains(string(data), `"title":"Water"`) ||
		!strings.Contains(string(data), `"project_name":"Garden"`) {
		t.Errorf("calendar task = %s", data)
	}
}
