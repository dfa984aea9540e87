package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var baseTime = time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testService wires the real engine over memory stores.
type testService struct {
	items   *content.MemoryItemRepository
	folders *content.MemoryFolderRepository
	machine *lifecycle.Machine
	sweeper *jobs.Sweeper
	auditor *invariants.Auditor
	bulk    *bulk.Coordinator
}

func (s *testService) GetItem(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *testService) Transition(ctx context.Context, req lifecycle.TransitionRequest) (*content.Item, error) {
	return s.machine.Transition(ctx, req)
}

func (s *testService) RunSweep(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error) {
	return s.sweeper.Run(ctx, kind)
}

func (s *testService) AuditInvariants(ctx context.Context, kind domain.Kind) (*invariants.Report, error) {
	return s.auditor.Audit(ctx, kind)
}

func (s *testService) BulkMutate(ctx context.Context, req bulk.Request) (*bulk.Result, error) {
	return s.bulk.Apply(ctx, req)
}

func (s *testService) RepairOrphans(ctx context.Context, kind domain.Kind, strategy bulk.Strategy, at *time.Time) (*bulk.RepairResult, error) {
	return s.bulk.Repair(ctx, kind, strategy, at)
}

func setupAdminAPI(t *testing.T, opts ...AdminOption) (http.Handler, *testService, *testClock) {
	t.Helper()
	clock := &testClock{now: baseTime}
	items := content.NewMemoryItemRepository(content.WithClock(clock.Now))
	folders := content.NewMemoryFolderRepository(content.WithClock(clock.Now))
	svc := &testService{
		items:   items,
		folders: folders,
		machine: lifecycle.NewMachine(items, lifecycle.WithClock(clock.Now)),
		sweeper: jobs.NewSweeper(items, jobs.WithClock(clock.Now)),
		auditor: invariants.NewAuditor(items, invariants.WithClock(clock.Now)),
		bulk:    bulk.NewCoordinator(items, folders, bulk.WithClock(clock.Now)),
	}

	opts = append([]AdminOption{
		WithItemService(svc),
		WithSweepService(svc),
		WithAuditService(svc),
		WithBulkService(svc),
	}, opts...)
	handler, err := NewAdminAPI(opts...).Handler()
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	return handler, svc, clock
}

func (s *testService) seed(t *testing.T, item *content.Item) *content.Item {
	t.Helper()
	if item.Kind == "" {
		item.Kind = domain.KindWallpaper
	}
	created, err := s.items.Create(context.Background(), item)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return created
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch value := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(value)
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d got %d body=%s", method, path, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
	}
}

func TestAdminAPI_GetItem(t *testing.T) {
	handler, svc, _ := setupAdminAPI(t)
	item := svc.seed(t, &content.Item{Status: domain.StatusDraft})

	rec := doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/"+item.ID.String(), nil, http.StatusOK)
	var fetched content.Item
	decodeJSONBody(t, rec, &fetched)
	if fetched.ID != item.ID || fetched.Status != domain.StatusDraft {
		t.Fatalf("unexpected item %+v", fetched)
	}

	missing := doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/"+uuid.NewString(), nil, http.StatusNotFound)
	var errBody errorResponse
	decodeJSONBody(t, missing, &errBody)
	if errBody.Error != "not_found" {
		t.Fatalf("expected not_found got %q", errBody.Error)
	}

	doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/not-a-uuid", nil, http.StatusBadRequest)
}

func TestAdminAPI_TransitionStatusCodes(t *testing.T) {
	handler, svc, _ := setupAdminAPI(t)
	item := svc.seed(t, &content.Item{Status: domain.StatusDraft})
	path := "/admin/api/items/" + item.ID.String() + "/transition"
	future := baseTime.Add(time.Hour).Format(time.RFC3339)

	rec := doJSONRequest(t, handler, http.MethodPost, path, map[string]any{
		"action":       "schedule",
		"version":      item.Version,
		"scheduled_at": future,
	}, http.StatusOK)
	var scheduled content.Item
	decodeJSONBody(t, rec, &scheduled)
	if scheduled.Status != domain.StatusScheduled || scheduled.Version != item.Version+1 {
		t.Fatalf("expected scheduled item at next version, got %+v", scheduled)
	}

	// Same version again loses the compare-and-swap.
	stale := doJSONRequest(t, handler, http.MethodPost, path, map[string]any{
		"action":       "reschedule",
		"version":      item.Version,
		"scheduled_at": future,
	}, http.StatusConflict)
	var errBody errorResponse
	decodeJSONBody(t, stale, &errBody)
	if errBody.Error != "stale_version" {
		t.Fatalf("expected stale_version got %q", errBody.Error)
	}

	past := doJSONRequest(t, handler, http.MethodPost, path, map[string]any{
		"action":       "reschedule",
		"version":      scheduled.Version,
		"scheduled_at": baseTime.Add(-time.Minute).Format(time.RFC3339),
	}, http.StatusUnprocessableEntity)
	decodeJSONBody(t, past, &errBody)
	if errBody.Error != "past_date" {
		t.Fatalf("expected past_date got %q", errBody.Error)
	}

	unchanged, err := svc.items.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if unchanged.Version != scheduled.Version || unchanged.ScheduledAt.String() != scheduled.ScheduledAt.String() {
		t.Fatalf("expected rejected reschedule to leave item unchanged, got %+v", unchanged)
	}

	draft := svc.seed(t, &content.Item{Status: domain.StatusDraft})
	invalid := doJSONRequest(t, handler, http.MethodPost, "/admin/api/items/"+draft.ID.String()+"/transition", map[string]any{
		"action":       "reschedule",
		"version":      draft.Version,
		"scheduled_at": future,
	}, http.StatusUnprocessableEntity)
	decodeJSONBody(t, invalid, &errBody)
	if errBody.Error != "invalid_transition" {
		t.Fatalf("expected invalid_transition got %q", errBody.Error)
	}

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/items/"+uuid.NewString()+"/transition", map[string]any{
		"action":  "publish_now",
		"version": 1,
	}, http.StatusNotFound)

	doJSONRequest(t, handler, http.MethodPost, path, `{"action":`, http.StatusBadRequest)

	issues := doJSONRequest(t, handler, http.MethodPost, path, map[string]any{"action": "schedule"}, http.StatusUnprocessableEntity)
	decodeJSONBody(t, issues, &errBody)
	if errBody.Error != "validation_failed" || len(errBody.Issues) == 0 {
		t.Fatalf("expected schema issues, got %+v", errBody)
	}

	doJSONRequest(t, handler, http.MethodPost, path, map[string]any{
		"action":  "schedule",
		"version": scheduled.Version,
	}, http.StatusBadRequest)
}

func TestAdminAPI_SweepPublishesDueItems(t *testing.T) {
	handler, svc, clock := setupAdminAPI(t)
	item := svc.seed(t, &content.Item{Status: domain.StatusDraft})
	doJSONRequest(t, handler, http.MethodPost, "/admin/api/items/"+item.ID.String()+"/transition", map[string]any{
		"action":       "schedule",
		"version":      item.Version,
		"scheduled_at": baseTime.Add(time.Hour).Format(time.RFC3339),
	}, http.StatusOK)

	clock.Advance(90 * time.Minute)

	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/schedule/sweep", map[string]any{"kind": "wallpaper"}, http.StatusOK)
	var report jobs.SweepReport
	decodeJSONBody(t, rec, &report)
	if report.Totals[jobs.OutcomePublished] != 1 {
		t.Fatalf("expected one published item, got %+v", report.Totals)
	}

	again := doJSONRequest(t, handler, http.MethodPost, "/admin/api/schedule/sweep", nil, http.StatusOK)
	decodeJSONBody(t, again, &report)
	if report.Totals[jobs.OutcomePublished] != 0 {
		t.Fatalf("expected second sweep to publish nothing, got %+v", report.Totals)
	}

	published, err := svc.items.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if published.Status != domain.StatusPublished || !published.ScheduledAt.IsZero() {
		t.Fatalf("expected published item without schedule, got %+v", published)
	}

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/schedule/sweep", map[string]any{"kind": "poster"}, http.StatusUnprocessableEntity)
}

func TestAdminAPI_AuditAndRepair(t *testing.T) {
	handler, svc, _ := setupAdminAPI(t)
	svc.seed(t, &content.Item{Kind: domain.KindBanner, Status: domain.StatusScheduled})
	svc.seed(t, &content.Item{Kind: domain.KindBanner, Status: domain.StatusScheduled, ScheduledAt: content.ParseTimestamp("garbage")})
	svc.seed(t, &content.Item{Kind: domain.KindBanner, Status: domain.StatusScheduled, ScheduledAt: content.TimestampOf(baseTime.Add(time.Hour))})

	rec := doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/banner/audit", nil, http.StatusOK)
	var report invariants.Report
	decodeJSONBody(t, rec, &report)
	if report.Total != 3 || report.Counts[invariants.ClassOrphanedScheduled] != 2 {
		t.Fatalf("expected 2 orphans out of 3, got %+v", report)
	}

	doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/poster/audit", nil, http.StatusBadRequest)

	repair := doJSONRequest(t, handler, http.MethodPost, "/admin/api/items/banner/repair", map[string]any{"strategy": "draft"}, http.StatusOK)
	var repaired bulk.RepairResult
	decodeJSONBody(t, repair, &repaired)
	if len(repaired.Result.Succeeded) != 2 || len(repaired.Result.Failed) != 0 {
		t.Fatalf("expected both orphans repaired, got %+v", repaired.Result)
	}

	after := doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/banner/audit", nil, http.StatusOK)
	decodeJSONBody(t, after, &report)
	if report.Counts[invariants.ClassOrphanedScheduled] != 0 || report.Counts[invariants.ClassValidScheduled] != 1 {
		t.Fatalf("expected clean audit after repair, got %+v", report.Counts)
	}

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/items/banner/repair", map[string]any{"strategy": "schedule"}, http.StatusUnprocessableEntity)
}

func TestAdminAPI_BulkStatusCodes(t *testing.T) {
	handler, svc, _ := setupAdminAPI(t)
	a := svc.seed(t, &content.Item{Status: domain.StatusDraft})
	c := svc.seed(t, &content.Item{Status: domain.StatusDraft})
	missing := uuid.New()

	rec := doJSONRequest(t, handler, http.MethodPost, "/admin/api/bulk", map[string]any{
		"op":  "delete",
		"ids": []string{a.ID.String(), missing.String(), c.ID.String()},
	}, http.StatusMultiStatus)
	var result bulk.Result
	decodeJSONBody(t, rec, &result)
	if len(result.Succeeded) != 2 || result.Succeeded[0] != a.ID || result.Succeeded[1] != c.ID {
		t.Fatalf("expected A and C to succeed in order, got %v", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].ID != missing || result.Failed[0].Reason != bulk.ReasonNotFound {
		t.Fatalf("expected missing id to fail with not_found, got %+v", result.Failed)
	}

	folder, err := svc.folders.Create(context.Background(), &content.Folder{Name: "Featured"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	d := svc.seed(t, &content.Item{Status: domain.StatusDraft})
	doJSONRequest(t, handler, http.MethodPost, "/admin/api/bulk", map[string]any{
		"op":     "move_to_folder",
		"ids":    []string{d.ID.String()},
		"params": map[string]any{"folder_id": folder.ID.String()},
	}, http.StatusOK)

	var errBody errorResponse
	empty := doJSONRequest(t, handler, http.MethodPost, "/admin/api/bulk", map[string]any{"op": "delete", "ids": []string{}}, http.StatusUnprocessableEntity)
	decodeJSONBody(t, empty, &errBody)
	if errBody.Error != "invalid_request" {
		t.Fatalf("expected invalid_request got %q", errBody.Error)
	}

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/bulk", map[string]any{
		"op":     "move_to_folder",
		"ids":    []string{d.ID.String()},
		"params": map[string]any{"folder_id": uuid.NewString()},
	}, http.StatusUnprocessableEntity)

	doJSONRequest(t, handler, http.MethodPost, "/admin/api/bulk", map[string]any{"op": "archive", "ids": []string{d.ID.String()}}, http.StatusUnprocessableEntity)
}

func TestAdminAPI_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler, svc, _ := setupAdminAPI(t, WithRegistry(registry))
	item := svc.seed(t, &content.Item{Status: domain.StatusDraft})

	doJSONRequest(t, handler, http.MethodGet, "/admin/api/items/"+item.ID.String(), nil, http.StatusOK)

	rec := doJSONRequest(t, handler, http.MethodGet, "/metrics", nil, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "publish_http_requests_total") {
		t.Fatalf("expected request counter in exposition, got %s", body)
	}
	if strings.Contains(body, item.ID.String()) {
		t.Fatalf("expected route patterns instead of raw ids in labels")
	}
}

func TestAdminAPI_CustomBasePathAndMissingServices(t *testing.T) {
	handler, err := NewAdminAPI(WithBasePath("/ops/")).Handler()
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	doJSONRequest(t, handler, http.MethodPost, "/ops/schedule/sweep", nil, http.StatusNotImplemented)
	doJSONRequest(t, handler, http.MethodPost, "/admin/api/schedule/sweep", nil, http.StatusNotFound)
}

func TestJoinPath(t *testing.T) {
	cases := []struct {
		base, suffix, want string
	}{
		{"", "", "/"},
		{"admin/api/", "", "/admin/api"},
		{"/admin/api", "/bulk/", "/admin/api/bulk"},
	}
	for _, tc := range cases {
		if got := joinPath(tc.base, tc.suffix); got != tc.want {
			t.Fatalf("joinPath(%q, %q): expected %q got %q", tc.base, tc.suffix, tc.want, got)
		}
	}
}
