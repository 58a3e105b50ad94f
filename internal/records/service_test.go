package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/substrata-labs/fieldbook/internal/apperr"
	"github.com/substrata-labs/fieldbook/internal/field"
	"github.com/substrata-labs/fieldbook/internal/locations"
	"github.com/substrata-labs/fieldbook/internal/query"
	"github.com/substrata-labs/fieldbook/internal/sites"
	"gorm.io/gorm"
)

type sequenceIDProvider struct {
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("record-id-%04d", p.next), nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixtures struct {
	siteID     string
	locationID string
}

func newTestService(t *testing.T) (*Service, *Store, *testClock, fixtures) {
	t.Helper()

	dsn := fmt.Sprintf("file:fieldbook_records_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&sites.Site{}, &locations.DigLocation{}, &DetailRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	clock := &testClock{now: time.Unix(1760000000, 0).UTC()}

	seeded := fixtures{siteID: testSiteID, locationID: testLocationID}
	site := sites.Site{ID: seeded.siteID, Name: "ridge trench", CreatedBy: "surveyor@example.com", CreatedAt: clock.Now(), UpdatedAt: clock.Now()}
	if err := db.Create(&site).Error; err != nil {
		t.Fatalf("failed to seed site: %v", err)
	}
	location := locations.DigLocation{ID: seeded.locationID, SiteID: seeded.siteID, Name: "unit 4", CreatedBy: "surveyor@example.com", CreatedAt: clock.Now(), UpdatedAt: clock.Now()}
	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("failed to seed dig location: %v", err)
	}

	store, err := NewStore(StoreConfig{
		Database:   db,
		Clock:      clock.Now,
		IDProvider: &sequenceIDProvider{},
	})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}

	service, err := NewService(ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service, store, clock, seeded
}

func mustCreate(t *testing.T, service *Service, callerID string, cfg CreateConfig) DTO {
	t.Helper()
	input, err := NewCreateInput(cfg)
	if err != nil {
		t.Fatalf("unexpected input error: %v", err)
	}
	dto, err := service.Create(context.Background(), callerID, input)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	return dto
}

func mustList(t *testing.T, service *Service, callerID string, cfg ListRequestConfig) ListResult {
	t.Helper()
	request, err := NewListRequest(cfg)
	if err != nil {
		t.Fatalf("unexpected request error: %v", err)
	}
	result, err := service.List(context.Background(), callerID, request)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	return result
}

func TestCreateForcesOwnershipFromCaller(t *testing.T) {
	service, _, clock, seeded := newTestService(t)

	notes := "shard scatter near the east wall"
	recordedAt := "2026-03-14T09:26:53Z"
	dto := mustCreate(t, service, "digger@example.com", CreateConfig{
		SiteID:     seeded.siteID,
		Title:      "pottery shard",
		Notes:      &notes,
		RecordedAt: &recordedAt,
	})

	if dto.CreatedBy != "digger@example.com" {
		t.Fatalf("createdBy must come from the caller, got %q", dto.CreatedBy)
	}
	if !dto.IsOwner {
		t.Fatalf("creator must see isOwner=true")
	}
	if !dto.CreatedAt.Equal(clock.Now()) || !dto.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("timestamps must come from the clock, got %v / %v", dto.CreatedAt, dto.UpdatedAt)
	}
	if dto.RecordedAt == nil || !dto.RecordedAt.Equal(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)) {
		t.Fatalf("recordedAt must round-trip independently of createdAt, got %v", dto.RecordedAt)
	}

	fetched, err := service.GetByID(context.Background(), "reader@example.com", dto.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if fetched == nil || fetched.Notes == nil || *fetched.Notes != notes {
		t.Fatalf("unexpected fetched row %+v", fetched)
	}
	if fetched.IsOwner {
		t.Fatalf("non-creator must see isOwner=false")
	}
}

func TestListFiltersBySiteAndDigLocation(t *testing.T) {
	service, _, _, seeded := newTestService(t)

	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "loose find"})
	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, DigLocationID: &seeded.locationID, Title: "in-unit find"})

	bySite := mustList(t, service, "digger@example.com", ListRequestConfig{SiteID: seeded.siteID})
	if bySite.Total != 2 {
		t.Fatalf("expected 2 records for the site, got %d", bySite.Total)
	}

	byLocation := mustList(t, service, "digger@example.com", ListRequestConfig{DigLocationID: seeded.locationID})
	if byLocation.Total != 1 || byLocation.Rows[0].Title != "in-unit find" {
		t.Fatalf("unexpected dig location filter result %+v", byLocation)
	}

	otherSite := mustList(t, service, "digger@example.com", ListRequestConfig{SiteID: "0190b3f8-4c1a-7c7e-9f52-0a3b6dcefff0"})
	if otherSite.Total != 0 || len(otherSite.Rows) != 0 {
		t.Fatalf("foreign-key filter must be an exact match, got %+v", otherSite)
	}
}

func TestListSearchEscapesWildcards(t *testing.T) {
	service, _, _, seeded := newTestService(t)

	notes := "moisture at 50% depth"
	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "soil sample", Notes: &notes})
	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "50 meter baseline"})

	result := mustList(t, service, "digger@example.com", ListRequestConfig{Search: "50%"})
	if result.Total != 1 || result.Rows[0].Title != "soil sample" {
		t.Fatalf("literal %% must not act as a wildcard, got %+v", result)
	}
}

func TestListOwnerOnly(t *testing.T) {
	service, _, _, seeded := newTestService(t)

	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "mine"})
	mustCreate(t, service, "other@example.com", CreateConfig{SiteID: seeded.siteID, Title: "theirs"})

	all := mustList(t, service, "digger@example.com", ListRequestConfig{})
	if all.Total != 2 {
		t.Fatalf("reads are shared across callers, got total %d", all.Total)
	}

	mine := mustList(t, service, "digger@example.com", ListRequestConfig{OwnerOnly: true})
	if mine.Total != 1 || mine.Rows[0].Title != "mine" {
		t.Fatalf("ownerOnly must restrict to the caller's rows, got %+v", mine)
	}
}

func TestUpdateAppliesTriStatePatch(t *testing.T) {
	service, _, clock, seeded := newTestService(t)

	notes := "initial notes"
	recordedAt := "2026-03-14T09:26:53Z"
	created := mustCreate(t, service, "digger@example.com", CreateConfig{
		SiteID:        seeded.siteID,
		DigLocationID: &seeded.locationID,
		Title:         "pottery shard",
		Notes:         &notes,
		RecordedAt:    &recordedAt,
	})

	clock.Advance(time.Minute)

	patch, err := NewPatchInput(PatchConfig{
		Title:         field.Set("rim shard"),
		DigLocationID: field.Null[string](),
		RecordedAt:    field.Null[string](),
	})
	if err != nil {
		t.Fatalf("unexpected patch error: %v", err)
	}

	updated, err := service.Update(context.Background(), "digger@example.com", created.ID, patch)
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}

	if updated.Title != "rim shard" {
		t.Fatalf("title must be replaced, got %q", updated.Title)
	}
	if updated.DigLocationID != nil {
		t.Fatalf("null must clear digLocationId, got %v", *updated.DigLocationID)
	}
	if updated.RecordedAt != nil {
		t.Fatalf("null must clear recordedAt, got %v", updated.RecordedAt)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("absent notes must stay untouched, got %v", updated.Notes)
	}
	if updated.SiteID != seeded.siteID {
		t.Fatalf("absent siteId must stay untouched, got %q", updated.SiteID)
	}
	if !updated.UpdatedAt.Equal(clock.Now()) || updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updated_at must advance, got %v", updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must never change, got %v", updated.CreatedAt)
	}
}

func TestUpdateByNonCreatorIsForbiddenAndLeavesRow(t *testing.T) {
	service, _, _, seeded := newTestService(t)

	created := mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "pottery shard"})

	patch, err := NewPatchInput(PatchConfig{Title: field.Set("hijacked")})
	if err != nil {
		t.Fatalf("unexpected patch error: %v", err)
	}

	_, err = service.Update(context.Background(), "intruder@example.com", created.ID, patch)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	fetched, err := service.GetByID(context.Background(), "digger@example.com", created.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if fetched.Title != "pottery shard" || !fetched.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("forbidden update must leave the row untouched, got %+v", fetched)
	}
}

func TestRemoveEnforcesOwnership(t *testing.T) {
	service, _, _, seeded := newTestService(t)

	created := mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "pottery shard"})

	if err := service.Remove(context.Background(), "intruder@example.com", created.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := service.Remove(context.Background(), "digger@example.com", created.ID); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}

	fetched, err := service.GetByID(context.Background(), "digger@example.com", created.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if fetched != nil {
		t.Fatalf("removed record must be gone, got %+v", fetched)
	}
	if err := service.Remove(context.Background(), "digger@example.com", created.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("removing a missing record must be not found, got %v", err)
	}
}

func TestMissingCallerIsUnauthorized(t *testing.T) {
	service, _, _, seeded := newTestService(t)

	input, err := NewCreateInput(CreateConfig{SiteID: seeded.siteID, Title: "pottery shard"})
	if err != nil {
		t.Fatalf("unexpected input error: %v", err)
	}
	if _, err := service.Create(context.Background(), "", input); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := service.List(context.Background(), "", ListRequest{Window: defaultWindow(t)}); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestDependentCounts(t *testing.T) {
	service, store, _, seeded := newTestService(t)

	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, Title: "loose find"})
	mustCreate(t, service, "digger@example.com", CreateConfig{SiteID: seeded.siteID, DigLocationID: &seeded.locationID, Title: "in-unit find"})

	bySite, err := store.CountBySite(context.Background(), seeded.siteID)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if bySite != 2 {
		t.Fatalf("expected 2 records for the site, got %d", bySite)
	}

	byLocation, err := store.CountByDigLocation(context.Background(), seeded.locationID)
	if err != nil {
		t.Fatalf("unexpected count error: %v", err)
	}
	if byLocation != 1 {
		t.Fatalf("expected 1 record for the dig location, got %d", byLocation)
	}
}

func defaultWindow(t *testing.T) query.Window {
	t.Helper()
	window, err := query.NewWindow(nil, nil)
	if err != nil {
		t.Fatalf("unexpected window error: %v", err)
	}
	return window
}
