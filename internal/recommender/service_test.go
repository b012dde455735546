package recommender

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chrisdamba/foodmatch/internal/intent"
	"github.com/chrisdamba/foodmatch/internal/logging"
	"github.com/chrisdamba/foodmatch/internal/models"
	"github.com/chrisdamba/foodmatch/internal/output"
	"github.com/chrisdamba/foodmatch/internal/ranking"
	"github.com/google/go-cmp/cmp"
)

var campus = models.Location{Lat: 42.2780, Lon: -83.7382}

// offset returns a point roughly metres north of campus.
func offset(metres float64) models.Location {
	return models.Location{Lat: campus.Lat + metres/111195.0, Lon: campus.Lon}
}

func catalog() []models.Vendor {
	return []models.Vendor{
		{ID: "c1", Name: "Bean There", Category: models.CategoryCafes, Cuisine: "Coffee", Location: offset(300), PriceTier: 1, Rating: 4.6, IsOpen: true, Tags: []string{"Coffee"}},
		{ID: "c2", Name: "Daily Grind", Category: models.CategoryCafes, Cuisine: "Coffee", Location: offset(900), PriceTier: 2, Rating: 4.2, IsOpen: true, Tags: []string{"Coffee", "Pastries"}},
		{ID: "c3", Name: "Night Owl Espresso", Category: models.CategoryCafes, Cuisine: "Coffee", Location: offset(500), PriceTier: 1, Rating: 4.9, IsOpen: false},
		{ID: "r1", Name: "Protein Palace", Category: models.CategoryRestaurants, Cuisine: "American", Location: offset(700), PriceTier: 2, Rating: 4.4, IsOpen: true, Tags: []string{"High protein"},
			SocialProof: &models.SocialProof{FriendsLoved: 3}},
		{ID: "g1", Name: "Campus Market", Category: models.CategoryGroceries, Cuisine: "Grocery", Location: offset(2500), PriceTier: 1, Rating: 4.0, IsOpen: true},
	}
}

type stubFinder struct {
	mu      sync.Mutex
	vendors []models.Vendor
	err     error
	block   bool
	nearby  []float64
	getAlls int
}

func (f *stubFinder) FindNearby(ctx context.Context, _ models.Location, radius float64) ([]models.Vendor, error) {
	f.mu.Lock()
	f.nearby = append(f.nearby, radius)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.vendors, f.err
}

func (f *stubFinder) GetAll(ctx context.Context) ([]models.Vendor, error) {
	f.mu.Lock()
	f.getAlls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.vendors, f.err
}

type recordingOutput struct {
	mu       sync.Mutex
	topics   []string
	messages [][]byte
	err      error
}

func (o *recordingOutput) WriteMessage(topic string, msg []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.topics = append(o.topics, topic)
	o.messages = append(o.messages, append([]byte(nil), msg...))
	return nil
}

func (o *recordingOutput) Close() error { return nil }

func (o *recordingOutput) events(t *testing.T) []output.RankedResultEvent {
	t.Helper()
	events := make([]output.RankedResultEvent, 0, len(o.messages))
	for _, msg := range o.messages {
		var ev output.RankedResultEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func newTestService(finder *stubFinder, out output.Destination) *Service {
	engine, err := ranking.NewEngine(ranking.DefaultWeights())
	if err != nil {
		panic(err)
	}
	svc := NewService(finder, engine, out, logging.Discard(), Config{
		QueryTimeout:    time.Second,
		DefaultLocation: campus,
		DefaultLimit:    10,
	})
	svc.now = func() time.Time { return time.Date(2026, 10, 3, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestRecommendCoffee(t *testing.T) {
	finder := &stubFinder{vendors: catalog()}
	out := &recordingOutput{}
	svc := newTestService(finder, out)

	rec, err := svc.Recommend(context.Background(), Request{Query: intent.Query{Type: models.SearchCoffee}})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(finder.nearby) != 1 || finder.nearby[0] != 1500 {
		t.Errorf("FindNearby radii = %v, want [1500]", finder.nearby)
	}
	if rec.ID == "" || rec.Intent.DisplayText != "Coffee" || rec.Location != campus {
		t.Errorf("unexpected recommendation header: %+v", rec)
	}
	if len(rec.Results) != 2 || rec.Results[0].Vendor.ID != "c1" || rec.Results[1].Vendor.ID != "c2" {
		t.Fatalf("results = %+v, want c1 then c2", rec.Results)
	}
	if rec.Stats.Closed != 1 || rec.Stats.CategoryMismatch != 1 || rec.Stats.TooFar != 1 {
		t.Errorf("stats = %+v", rec.Stats)
	}

	events := out.events(t)
	if len(events) != 2 {
		t.Fatalf("published %d events, want 2", len(events))
	}
	for i, ev := range events {
		if out.topics[i] != output.TopicRankedResults {
			t.Errorf("topic = %q", out.topics[i])
		}
		if ev.RecommendationID != rec.ID || int(ev.Rank) != i+1 || ev.VendorID != rec.Results[i].Vendor.ID {
			t.Errorf("event %d = %+v", i, ev)
		}
		if int(ev.MatchScore) != rec.Results[i].MatchScore || ev.MatchReason != rec.Results[i].MatchReason {
			t.Errorf("event %d does not mirror its result", i)
		}
	}
}

func TestRecommendUsesRequestLocationAndLimit(t *testing.T) {
	finder := &stubFinder{vendors: catalog()}
	svc := newTestService(finder, nil)

	loc := offset(100)
	maxDistance := 5000.0
	rec, err := svc.Recommend(context.Background(), Request{
		Query:    intent.Query{Type: models.SearchCustom, Filters: &intent.FilterInput{MaxDistance: &maxDistance}},
		Location: &loc,
		Limit:    2,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Location != loc {
		t.Errorf("location = %v, want %v", rec.Location, loc)
	}
	if len(rec.Results) != 2 {
		t.Fatalf("got %d results, want the limit of 2", len(rec.Results))
	}
	if rec.Stats.Kept != 4 {
		t.Errorf("kept = %d, want 4 open vendors in range", rec.Stats.Kept)
	}
}

func TestRecommendRejectsInvalidRequestsBeforeFetching(t *testing.T) {
	negative := -5.0
	blank := []string{"  ", ""}
	badLoc := models.Location{Lat: 123, Lon: 0}

	tests := []struct {
		name string
		req  Request
	}{
		{"negative distance", Request{Query: intent.Query{Type: models.SearchCustom, Filters: &intent.FilterInput{MaxDistance: &negative}}}},
		{"blank keywords", Request{Query: intent.Query{Type: models.SearchCustom, Filters: &intent.FilterInput{Keywords: blank}}}},
		{"unknown type", Request{Query: intent.Query{Type: "brunch"}}},
		{"bad location", Request{Query: intent.Query{Type: models.SearchCoffee}, Location: &badLoc}},
		{"negative limit", Request{Query: intent.Query{Type: models.SearchCoffee}, Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFinder{vendors: catalog()}
			out := &recordingOutput{}
			rec, err := newTestService(finder, out).Recommend(context.Background(), tt.req)
			if !errors.Is(err, models.ErrInvalidIntent) {
				t.Fatalf("err = %v, want ErrInvalidIntent", err)
			}
			if rec != nil {
				t.Error("expected no recommendation on error")
			}
			if len(finder.nearby) != 0 {
				t.Error("catalog was queried for an invalid request")
			}
			if len(out.messages) != 0 {
				t.Error("events were published for an invalid request")
			}
		})
	}
}

func TestRecommendTimesOut(t *testing.T) {
	finder := &stubFinder{block: true}
	svc := newTestService(finder, nil)
	svc.cfg.QueryTimeout = 20 * time.Millisecond

	_, err := svc.Recommend(context.Background(), Request{Query: intent.Query{Type: models.SearchCoffee}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestRecommendPropagatesFailures(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := newTestService(&stubFinder{err: boom}, nil).Recommend(context.Background(), Request{Query: intent.Query{Type: models.SearchCoffee}})
	if !errors.Is(err, boom) {
		t.Errorf("catalog error = %v, want wrapped %v", err, boom)
	}

	sinkDown := errors.New("broker unavailable")
	_, err = newTestService(&stubFinder{vendors: catalog()}, &recordingOutput{err: sinkDown}).
		Recommend(context.Background(), Request{Query: intent.Query{Type: models.SearchCoffee}})
	if !errors.Is(err, sinkDown) {
		t.Errorf("publish error = %v, want wrapped %v", err, sinkDown)
	}
}

func TestRecommendEmptyCatalogIsNotAnError(t *testing.T) {
	out := &recordingOutput{}
	rec, err := newTestService(&stubFinder{}, out).Recommend(context.Background(), Request{Query: intent.Query{Text: "coffee"}})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(rec.Results) != 0 || len(out.messages) != 0 {
		t.Errorf("expected no results and no events, got %d and %d", len(rec.Results), len(out.messages))
	}
}

func TestRecommendBatch(t *testing.T) {
	finder := &stubFinder{vendors: catalog()}
	out := &recordingOutput{}
	svc := newTestService(finder, out)

	reqs := []Request{
		{Query: intent.Query{Type: models.SearchCoffee}},
		{Query: intent.Query{Type: models.SearchHighProtein}},
		{Query: intent.Query{Type: models.SearchGroceries}},
		{Query: intent.Query{Text: "espresso near me"}, Limit: 1},
	}
	recs, err := svc.RecommendBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("RecommendBatch: %v", err)
	}
	if finder.getAlls != 1 || len(finder.nearby) != 0 {
		t.Errorf("catalog reads: GetAll=%d FindNearby=%d, want one snapshot", finder.getAlls, len(finder.nearby))
	}
	if len(recs) != len(reqs) {
		t.Fatalf("got %d recommendations", len(recs))
	}

	wantTypes := []models.SearchType{models.SearchCoffee, models.SearchHighProtein, models.SearchGroceries, models.SearchCoffee}
	for i, rec := range recs {
		if rec.Intent.SearchType != wantTypes[i] {
			t.Errorf("recommendation %d type = %s, want %s", i, rec.Intent.SearchType, wantTypes[i])
		}
	}
	if len(recs[3].Results) != 1 {
		t.Errorf("limit not applied: %d results", len(recs[3].Results))
	}

	// batch results match the single-request path
	single, err := newTestService(&stubFinder{vendors: catalog()}, nil).Recommend(context.Background(), reqs[1])
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if diff := cmp.Diff(single.Results, recs[1].Results); diff != "" {
		t.Errorf("batch result differs from single request (-single +batch):\n%s", diff)
	}

	total := 0
	for _, rec := range recs {
		total += len(rec.Results)
	}
	events := out.events(t)
	if len(events) != total {
		t.Fatalf("published %d events, want %d", len(events), total)
	}
	if events[0].RecommendationID != recs[0].ID {
		t.Error("events are not published in request order")
	}
}

func TestRecommendBatchFailsFastOnInvalidRequest(t *testing.T) {
	finder := &stubFinder{vendors: catalog()}
	zero := 0.0
	_, err := newTestService(finder, nil).RecommendBatch(context.Background(), []Request{
		{Query: intent.Query{Type: models.SearchCoffee}},
		{Query: intent.Query{Type: models.SearchCustom, Filters: &intent.FilterInput{MaxDistance: &zero}}},
	})
	if !errors.Is(err, models.ErrInvalidIntent) {
		t.Fatalf("err = %v, want ErrInvalidIntent", err)
	}
	if finder.getAlls != 0 {
		t.Error("catalog was loaded for an invalid batch")
	}
}

func TestRecommendBatchEmpty(t *testing.T) {
	finder := &stubFinder{}
	recs, err := newTestService(finder, nil).RecommendBatch(context.Background(), nil)
	if err != nil || len(recs) != 0 || finder.getAlls != 0 {
		t.Errorf("empty batch: recs=%v err=%v getAlls=%d", recs, err, finder.getAlls)
	}
}
