package sites

import (
	"math"
	"strings"
	"testing"

	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/query"
)

func TestNewListRequestDefaults(t *testing.T) {
	request, err := NewListRequest(ListRequestConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Window.Page != 1 || request.Window.PageSize != 25 {
		t.Fatalf("unexpected window %+v", request.Window)
	}
	if request.OrderBy != "updated_at" || request.OrderDir != query.DirectionDesc {
		t.Fatalf("unexpected ordering %s %s", request.OrderBy, request.OrderDir)
	}
	if request.Search != "" || request.OwnerOnly {
		t.Fatalf("unexpected filters %+v", request)
	}
}

func TestNewListRequestRejectsUnknownOrderColumn(t *testing.T) {
	_, err := NewListRequest(ListRequestConfig{OrderBy: "created_by"})
	if err == nil {
		t.Fatalf("created_by must not be sortable")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.KindOf(err))
	}
}

func TestNewListRequestTrimsSearch(t *testing.T) {
	request, err := NewListRequest(ListRequestConfig{Search: "  trench  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Search != "trench" {
		t.Fatalf("unexpected search %q", request.Search)
	}
}

func TestNewCreateInputValidation(t *testing.T) {
	longName := strings.Repeat("x", 121)
	nan := math.NaN()
	empty := "   "

	testCases := []struct {
		name string
		cfg  CreateConfig
	}{
		{name: "empty-name", cfg: CreateConfig{Name: "   "}},
		{name: "long-name", cfg: CreateConfig{Name: longName}},
		{name: "nan-latitude", cfg: CreateConfig{Name: "Trench B", Latitude: &nan}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := NewCreateInput(testCase.cfg)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("expected validation kind, got %v", apperr.KindOf(err))
			}
		})
	}

	input, err := NewCreateInput(CreateConfig{Name: "  Trench B  ", Description: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.Name != "Trench B" {
		t.Fatalf("name should be trimmed, got %q", input.Name)
	}
	if input.Description != nil {
		t.Fatalf("blank description should normalize to absent")
	}
}

func TestNewPatchInputPreservesTriState(t *testing.T) {
	patch, err := NewPatchInput(PatchConfig{
		Name:        field.Set("  Trench C  "),
		Description: field.Null[string](),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, ok := patch.Name.Value()
	if !ok || name != "Trench C" {
		t.Fatalf("unexpected name %q ok=%v", name, ok)
	}
	if !patch.Description.Null() {
		t.Fatalf("description null must be preserved")
	}
	if patch.Latitude.Present() {
		t.Fatalf("latitude was never mentioned and must stay absent")
	}
}

func TestNewPatchInputRejectsNullName(t *testing.T) {
	_, err := NewPatchInput(PatchConfig{Name: field.Null[string]()})
	if err == nil {
		t.Fatalf("name null must be rejected")
	}
}

func TestNewPatchInputRejectsBlankName(t *testing.T) {
	_, err := NewPatchInput(PatchConfig{Name: field.Set("   ")})
	if err == nil {
		t.Fatalf("blank name must be rejected")
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 0190b3f8-4c1a-7c7e-9f52-0a3b6dce8a41 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "0190b3f8-4c1a-7c7e-9f52-0a3b6dce8a41" {
		t.Fatalf("unexpected id %q", id)
	}

	if _, err := ParseID("not-a-uuid"); err == nil {
		t.Fatalf("expected malformed id to fail")
	}
}
