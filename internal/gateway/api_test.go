package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flemzord/junction/internal/intersection"
)

func TestHandleVehicles(t *testing.T) {
	t.Parallel()

	src := newFakeSource(t)
	src.ix.Light().Advance() // North
	c := src.ix.Coordinator()
	for _, id := range []int{7, 3} {
		if err := c.RequestPassage(context.Background(), &intersection.Vehicle{ID: id, Arrival: intersection.North}); err != nil {
			t.Fatal(err)
		}
	}

	g := &Gateway{source: src}
	rr := httptest.NewRecorder()
	g.handleVehicles().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var records []intersection.Record
	if err := json.NewDecoder(rr.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 || records[0].ID != 7 || records[1].ID != 3 {
		t.Errorf("records = %+v, want ids [7 3] in arrival order", records)
	}
	if records[0].Arrival != intersection.North || !records[0].Passed {
		t.Errorf("record = %+v", records[0])
	}
}

func TestHandleVehicles_EmptyIsArray(t *testing.T) {
	t.Parallel()

	g := &Gateway{source: newFakeSource(t)}
	rr := httptest.NewRecorder()
	g.handleVehicles().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))

	if got := rr.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", got)
	}
}

func TestHandleModules(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	rr := httptest.NewRecorder()
	g.handleModules().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/modules", nil))

	var mods []moduleJSON
	if err := json.NewDecoder(rr.Body).Decode(&mods); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, m := range mods {
		if m.ID == "gateway.http" && m.Namespace == "gateway" {
			found = true
		}
	}
	if !found {
		t.Errorf("gateway.http missing from %+v", mods)
	}
}
