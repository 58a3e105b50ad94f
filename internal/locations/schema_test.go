package locations

import (
	"testing"

	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
)

const testSiteID = "0190b3f8-4c1a-7c7e-9f52-0a3b6dce8a41"

func TestNewListRequestValidatesSiteFilter(t *testing.T) {
	request, err := NewListRequest(ListRequestConfig{SiteID: " " + testSiteID + " "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.SiteID != testSiteID {
		t.Fatalf("unexpected site filter %q", request.SiteID)
	}
	if _, err := NewListRequest(ListRequestConfig{SiteID: "not-a-uuid"}); err == nil {
		t.Fatalf("malformed siteId filter must be rejected")
	}
}

func TestNewCreateInputValidation(t *testing.T) {
	input, err := NewCreateInput(CreateConfig{SiteID: testSiteID, Name: "  unit 4  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.Name != "unit 4" {
		t.Fatalf("name must be trimmed, got %q", input.Name)
	}

	if _, err := NewCreateInput(CreateConfig{Name: "orphan"}); err == nil {
		t.Fatalf("siteId is required")
	}
	if _, err := NewCreateInput(CreateConfig{SiteID: "42", Name: "unit 4"}); err == nil {
		t.Fatalf("malformed siteId must be rejected")
	}
	if _, err := NewCreateInput(CreateConfig{SiteID: testSiteID, Name: "   "}); err == nil {
		t.Fatalf("blank name must be rejected")
	}
}

func TestNewPatchInputExcludesSiteBinding(t *testing.T) {
	patch, err := NewPatchInput(PatchConfig{
		Name:        field.Set("  unit 5  "),
		Description: field.Set(""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, ok := patch.Name.Value()
	if !ok || name != "unit 5" {
		t.Fatalf("unexpected name %q ok=%v", name, ok)
	}
	if !patch.Description.Null() {
		t.Fatalf("blank description must clear the column")
	}

	if _, err := NewPatchInput(PatchConfig{Name: field.Null[string]()}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("name null must be a validation failure, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	if _, err := ParseID(testSiteID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseID("not-a-uuid"); err == nil {
		t.Fatalf("malformed id must be rejected before any store access")
	}
}
