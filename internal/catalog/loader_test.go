package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/borghese/vitrine/internal/cache"
	"github.com/borghese/vitrine/internal/contact"
	"github.com/borghese/vitrine/internal/property"
	"github.com/borghese/vitrine/internal/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// memSource serves documents from a map and counts fetches per location.
type memSource struct {
	mu    sync.Mutex
	docs  map[string]string
	calls map[string]int
}

func newMemSource(docs map[string]string) *memSource {
	return &memSource{docs: docs, calls: map[string]int{}}
}

func (s *memSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[location]++
	doc, ok := s.docs[location]
	if !ok {
		return nil, fmt.Errorf("reading %s: %w", location, fs.ErrNotExist)
	}
	return []byte(doc), nil
}

func (s *memSource) count(location string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[location]
}

func (s *memSource) set(location, doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[location] = doc
}

func (s *memSource) remove(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, location)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func listingJSON(id int64, price float64, available bool) string {
	return fmt.Sprintf(`{
		"id": %d, "titulo": "Imóvel %d", "descricao": "", "tipo": "apartamento",
		"transacao": "venda", "preco": %v,
		"endereco": {"rua": "Rua A", "bairro": "Centro", "cidade": "Florianópolis", "estado": "SC"},
		"caracteristicas": {"quartos": 2, "banheiros": 1, "vagas": 1, "area": 60},
		"imagens": [], "destaque": %t, "disponivel": %t
	}`, id, id, price, id%2 == 1, available)
}

// siteDocs is a small site served from the root page.
func siteDocs() map[string]string {
	return map[string]string{
		ManifestPath: `{
			"imoveis": ["src/data/imoveis/1.json", "src/data/imoveis/2.json", "src/data/imoveis/3.json"],
			"empreendimentos": ["src/data/empreendimentos/aurora.json", "src/data/empreendimentos/brisa.json"]
		}`,
		"src/data/imoveis/1.json": listingJSON(1, 200000, true),
		"src/data/imoveis/2.json": listingJSON(2, 350000, true),
		"src/data/imoveis/3.json": listingJSON(3, 100000, false),
		"src/data/empreendimentos/aurora.json": `{
			"id": 10, "slug": "residencial-aurora", "nome": "Residencial Aurora",
			"caracteristicas": {"unidades": 48, "torres": 2, "andares": 12, "status": "em-construcao"},
			"destaque": true, "disponivel": true
		}`,
		"src/data/empreendimentos/brisa.json": `{
			"id": 11, "slug": "brisa-do-mar", "nome": "Brisa do Mar",
			"caracteristicas": {"status": "lancamento"},
			"destaque": true, "disponivel": false
		}`,
	}
}

func newTestLoader(t *testing.T, src source.Source, opts ...Option) *Loader {
	t.Helper()
	return New(src, source.NewResolver("/index.html"), opts...)
}

func TestFetchJSONCachesWithinTTL(t *testing.T) {
	src := newMemSource(siteDocs())
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newTestLoader(t, src, WithCache(cache.New(cache.WithClock(clock.Now))))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.FetchJSON(ctx, ManifestPath, true); err != nil {
			t.Fatalf("FetchJSON: %v", err)
		}
	}
	if got := src.count(ManifestPath); got != 1 {
		t.Errorf("fetched %d times within TTL, want 1", got)
	}

	clock.Advance(cache.DefaultTTL)
	if _, err := l.FetchJSON(ctx, ManifestPath, true); err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	if got := src.count(ManifestPath); got != 2 {
		t.Errorf("fetched %d times after TTL, want 2", got)
	}
}

func TestFetchJSONWithoutCache(t *testing.T) {
	src := newMemSource(siteDocs())
	l := newTestLoader(t, src)

	for i := 0; i < 2; i++ {
		if _, err := l.FetchJSON(context.Background(), ManifestPath, false); err != nil {
			t.Fatalf("FetchJSON: %v", err)
		}
	}
	if got := src.count(ManifestPath); got != 2 {
		t.Errorf("fetched %d times with cache off, want 2", got)
	}
}

func TestFetchJSONFallsBackToSecondCandidate(t *testing.T) {
	src := newMemSource(map[string]string{"./config.json": `{"a":1}`})
	l := newTestLoader(t, src)

	doc, err := l.FetchJSON(context.Background(), "config.json", true)
	if err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	if string(doc) != `{"a":1}` {
		t.Errorf("got %s", doc)
	}
	if src.count("config.json") != 1 || src.count("./config.json") != 1 {
		t.Errorf("calls = %v, want one per candidate", src.calls)
	}

	// Cached under the candidate that answered, so the first candidate is
	// retried and the second served from cache.
	if _, err := l.FetchJSON(context.Background(), "config.json", true); err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	if src.count("./config.json") != 1 {
		t.Errorf("second candidate fetched %d times, want 1", src.count("./config.json"))
	}
}

func TestFetchJSONReportsLastError(t *testing.T) {
	src := newMemSource(map[string]string{"data.json": `not json`})
	l := newTestLoader(t, src)

	_, err := l.FetchJSON(context.Background(), "data.json", true)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if ferr.Path != "data.json" {
		t.Errorf("Path = %q, want %q", ferr.Path, "data.json")
	}
	// "data.json" was invalid JSON, "./data.json" was missing; the missing
	// file is the last attempt.
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want last attempt's not-exist error", err)
	}
}

func TestLoadManifestMemoized(t *testing.T) {
	src := newMemSource(siteDocs())
	l := newTestLoader(t, src)
	ctx := context.Background()

	m, err := l.LoadManifest(ctx)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Listings) != 3 || len(m.Developments) != 2 {
		t.Fatalf("manifest = %+v", m)
	}

	l.ClearCache()
	src.remove(ManifestPath)

	if _, err := l.LoadManifest(ctx); err != nil {
		t.Fatalf("memoized manifest should survive ClearCache: %v", err)
	}
}

func TestLoadManifestRetriesAfterFailure(t *testing.T) {
	src := newMemSource(map[string]string{})
	l := newTestLoader(t, src)
	ctx := context.Background()

	if _, err := l.LoadManifest(ctx); err == nil {
		t.Fatal("expected error for missing manifest")
	}

	src.set(ManifestPath, `{"imoveis": [], "empreendimentos": []}`)
	if _, err := l.LoadManifest(ctx); err != nil {
		t.Fatalf("LoadManifest after fix: %v", err)
	}
}

func TestLoadAllListingsKeepsManifestOrder(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()), WithConcurrency(2))

	listings, err := l.LoadAllListings(context.Background())
	if err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}

	var got []int64
	for _, li := range listings {
		got = append(got, li.ID)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAllListingsCachesAggregate(t *testing.T) {
	src := newMemSource(siteDocs())
	l := newTestLoader(t, src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.LoadAllListings(ctx); err != nil {
			t.Fatalf("LoadAllListings: %v", err)
		}
	}
	if got := src.count("src/data/imoveis/1.json"); got != 1 {
		t.Errorf("record fetched %d times, want 1", got)
	}

	l.ClearCache()
	if _, err := l.LoadAllListings(ctx); err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}
	if got := src.count("src/data/imoveis/1.json"); got != 2 {
		t.Errorf("record fetched %d times after ClearCache, want 2", got)
	}
}

func TestLoadAllListingsFailureIsNotCached(t *testing.T) {
	docs := siteDocs()
	delete(docs, "src/data/imoveis/2.json")
	src := newMemSource(docs)
	l := newTestLoader(t, src)
	ctx := context.Background()

	_, err := l.LoadAllListings(ctx)
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if ferr.Path != "src/data/imoveis/2.json" {
		t.Errorf("Path = %q, want the missing record", ferr.Path)
	}

	src.set("src/data/imoveis/2.json", listingJSON(2, 350000, true))
	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		t.Fatalf("LoadAllListings after fix: %v", err)
	}
	if len(listings) != 3 {
		t.Errorf("got %d listings, want 3", len(listings))
	}
}

func TestLoadAllListingsSkipsInvalidRecord(t *testing.T) {
	docs := siteDocs()
	docs["src/data/imoveis/2.json"] = `{"id": 2, "tipo": "castelo", "transacao": "venda", "preco": 1, "caracteristicas": {"area": 10}}`
	l := newTestLoader(t, newMemSource(docs))
	ctx := context.Background()

	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}
	got := make([]int64, 0, len(listings))
	for _, li := range listings {
		got = append(got, li.ID)
	}
	if diff := cmp.Diff([]int64{1, 3}, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	li, found, err := l.ListingByID(ctx, 1)
	if err != nil || !found || li.ID != 1 {
		t.Errorf("ListingByID(1) = %d, %v, %v; want the valid sibling", li.ID, found, err)
	}
}

func TestLoadAllListingsAcceptsZeroArea(t *testing.T) {
	docs := siteDocs()
	docs["src/data/imoveis/2.json"] = `{"id": 2, "tipo": "terreno", "transacao": "venda", "preco": 90000,
		"caracteristicas": {"area": 0}, "disponivel": true}`
	l := newTestLoader(t, newMemSource(docs))

	results, err := l.Search(context.Background(), property.Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d available listings, want 2", len(results))
	}
}

func TestLoadAllListingsResultIsCallersCopy(t *testing.T) {
	docs := siteDocs()
	docs["src/data/imoveis/1.json"] = `{"id": 1, "tipo": "apartamento", "transacao": "venda", "preco": 200000,
		"caracteristicas": {"area": 60}, "imagens": ["fachada.jpg"], "empreendimentoId": 10, "disponivel": true}`
	l := newTestLoader(t, newMemSource(docs))
	ctx := context.Background()

	first, err := l.LoadAllListings(ctx)
	if err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}
	first[0].Price = -1
	first[0].Images[0] = "outra.jpg"
	*first[0].DevelopmentID = 99

	second, err := l.LoadAllListings(ctx)
	if err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}
	if second[0].Price != 200000 {
		t.Errorf("cached aggregate was modified through a returned slice: price = %v", second[0].Price)
	}
	if second[0].Images[0] != "fachada.jpg" {
		t.Errorf("cached images were modified through a returned record: %q", second[0].Images[0])
	}
	if *second[0].DevelopmentID != 10 {
		t.Errorf("cached development id was modified through a returned record: %d", *second[0].DevelopmentID)
	}
}

func TestClearCacheDuringLoadIsNotUndone(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	hits := map[string]int{}

	docs := siteDocs()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		n := hits[r.URL.Path]
		doc, ok := docs[r.URL.Path[1:]]
		mu.Unlock()
		if r.URL.Path == "/src/data/imoveis/1.json" && n == 1 {
			once.Do(func() { close(started) })
			<-release
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(srv.URL+"/", 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	l := New(src, source.NewResolver("/"))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := l.LoadAllListings(ctx)
		done <- err
	}()

	<-started
	// Let the load read the old version of listing 2 first.
	for deadline := time.Now().Add(5 * time.Second); ; {
		mu.Lock()
		served := hits["/src/data/imoveis/2.json"]
		mu.Unlock()
		if served > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	docs["src/data/imoveis/2.json"] = listingJSON(2, 999000, true)
	mu.Unlock()
	l.ClearCache()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("LoadAllListings: %v", err)
	}

	listings, err := l.LoadAllListings(ctx)
	if err != nil {
		t.Fatalf("LoadAllListings after clear: %v", err)
	}
	if listings[1].Price != 999000 {
		t.Errorf("price = %v after clear, want the updated 999000", listings[1].Price)
	}
}

func TestLoadAllListingsSharesInFlightLoad(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	hits := map[string]int{}

	docs := siteDocs()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		if r.URL.Path == "/src/data/imoveis/1.json" {
			<-release
		}
		doc, ok := docs[r.URL.Path[1:]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	src, err := source.NewHTTPSource(srv.URL+"/", time.Second*5)
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	l := New(src, source.NewResolver("/"))

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.LoadAllListings(context.Background())
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("LoadAllListings: %v", err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if hits["/src/data/imoveis/1.json"] != 1 {
		t.Errorf("record fetched %d times by concurrent callers, want 1", hits["/src/data/imoveis/1.json"])
	}
}

func TestLoadAllDevelopments(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))

	devs, err := l.LoadAllDevelopments(context.Background())
	if err != nil {
		t.Fatalf("LoadAllDevelopments: %v", err)
	}
	if len(devs) != 2 {
		t.Fatalf("got %d developments, want 2", len(devs))
	}
	if devs[0].Slug != "residencial-aurora" || devs[1].Slug != "brisa-do-mar" {
		t.Errorf("unexpected order: %q, %q", devs[0].Slug, devs[1].Slug)
	}
}

type recordingRelay struct {
	got []contact.Payload
}

func (r *recordingRelay) Submit(ctx context.Context, p contact.Payload) contact.Outcome {
	r.got = append(r.got, p)
	return contact.Outcome{Success: true, Message: contact.SuccessMessage}
}

func TestSubmitContact(t *testing.T) {
	relay := &recordingRelay{}
	l := newTestLoader(t, newMemSource(nil), WithRelay(relay))

	out := l.SubmitContact(context.Background(), contact.Payload{Name: "Ana"})
	if !out.Success {
		t.Errorf("expected success, got %+v", out)
	}
	if len(relay.got) != 1 || relay.got[0].Name != "Ana" {
		t.Errorf("relay received %+v", relay.got)
	}
}

func TestSubmitContactWithoutRelay(t *testing.T) {
	l := newTestLoader(t, newMemSource(nil))

	out := l.SubmitContact(context.Background(), contact.Payload{Name: "Ana"})
	if out.Success || out.Message != contact.FailureMessage {
		t.Errorf("got %+v, want failure outcome", out)
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := error(&FetchError{Path: "x.json", Err: inner})
	if !errors.Is(err, inner) {
		t.Error("FetchError should unwrap to its cause")
	}
	if err.Error() != "loading x.json: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFetchJSONIsValidJSON(t *testing.T) {
	l := newTestLoader(t, newMemSource(siteDocs()))
	doc, err := l.FetchJSON(context.Background(), "src/data/imoveis/1.json", false)
	if err != nil {
		t.Fatalf("FetchJSON: %v", err)
	}
	var li property.Listing
	if err := json.Unmarshal(doc, &li); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if li.ID != 1 {
		t.Errorf("ID = %d, want 1", li.ID)
	}
}
