package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCatalogFromJSONL(t *testing.T) {
	const jsonl = `{"id": 1, "title": "Katana, Bizen Osafune", "category": "刀", "status": "available", "price_jpy": 2500000, "nagasa_cm": 70.2}
{"id": 2, "title": "Tsuba, Higo school", "category": "鍔", "status": "available", "price_on_ask": true, "dealer": {"id": 1, "name": "Aoi Art"}}
`
	path := writeFile(t, "catalog.jsonl", jsonl)

	listings, err := LoadCatalogFromJSONL(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromJSONL: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].ID != 1 || listings[0].NagasaCM != 70.2 {
		t.Errorf("unexpected first listing %+v", listings[0])
	}
	if listings[1].Dealer == nil || listings[1].Dealer.Name != "Aoi Art" {
		t.Errorf("expected embedded dealer, got %+v", listings[1].Dealer)
	}
}

func TestLoadCatalogSkipsMalformed(t *testing.T) {
	const jsonl = `{"id": 1, "title": "Katana", "status": "available"}
this line is not json
{"id": 0, "title": "invalid id", "status": "available"}
{"id": 3, "title": "Wakizashi", "status": "nonsense"}

{"id": 2, "title": "Tanto", "status": "sold"}
`
	path := writeFile(t, "catalog.jsonl", jsonl)

	listings, err := LoadCatalogFromJSONL(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromJSONL: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected malformed lines skipped, got %d listings", len(listings))
	}
	if listings[0].ID != 1 || listings[1].ID != 2 {
		t.Errorf("expected ids [1 2], got [%d %d]", listings[0].ID, listings[1].ID)
	}
}

func TestLoadCatalogAppendLogLastWins(t *testing.T) {
	// The scraper re-appends a listing when it changes; the newest
	// record wins but keeps the original position.
	const jsonl = `{"id": 1, "title": "Katana", "status": "available", "price_jpy": 900000}
{"id": 2, "title": "Tanto", "status": "available"}
{"id": 1, "title": "Katana", "status": "sold", "price_jpy": 900000}
`
	path := writeFile(t, "catalog.jsonl", jsonl)

	listings, err := LoadCatalogFromJSONL(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromJSONL: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 unique listings, got %d", len(listings))
	}
	if listings[0].ID != 1 || listings[0].Status != model.StatusSold {
		t.Errorf("expected listing 1 updated in place, got %+v", listings[0])
	}
	if listings[1].ID != 2 {
		t.Errorf("expected listing 2 second, got %d", listings[1].ID)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalogFromJSONL(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Error("expected error for missing catalog")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	in := []model.Listing{
		{
			ID: 1, Title: "Katana, Bizen Osafune", TitleJa: "刀 備前長船",
			Category: "刀", Certification: "重要刀剣", Period: "室町",
			Signature: model.SignatureZaimei, Status: model.StatusAvailable,
			PriceJPY: 2_500_000, NagasaCM: 70.2,
			Dealer:    &model.Dealer{ID: 1, Name: "Aoi Art", Domain: "aoijapan.com", Location: "Tokyo"},
			CreatedAt: t0, UpdatedAt: t0.Add(time.Hour),
		},
		{
			ID: 2, Title: "Tsuba, Higo school", Category: "鍔",
			Status: model.StatusOnHold, PriceOnAsk: true,
			CreatedAt: t0, UpdatedAt: t0,
		},
	}

	path := filepath.Join(t.TempDir(), "catalog.db")
	if err := SaveSnapshot(path, in); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	out, err := LoadCatalogFromSQLite(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromSQLite: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(out))
	}

	// Snapshot load orders by updated_at descending.
	first := out[0]
	if first.ID != 1 {
		t.Fatalf("expected listing 1 first, got %d", first.ID)
	}
	if first.TitleJa != "刀 備前長船" || first.Certification != "重要刀剣" {
		t.Errorf("expected Japanese fields preserved, got %+v", first)
	}
	if first.Dealer == nil || first.Dealer.Location != "Tokyo" {
		t.Errorf("expected dealer preserved, got %+v", first.Dealer)
	}
	if !first.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("expected updated_at preserved, got %v", first.UpdatedAt)
	}

	second := out[1]
	if !second.PriceOnAsk {
		t.Error("expected price_on_ask preserved")
	}
	if second.Dealer != nil {
		t.Errorf("expected no dealer on listing 2, got %+v", second.Dealer)
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	if err := SaveSnapshot(path, []model.Listing{
		{ID: 1, Title: "Katana", Status: model.StatusAvailable},
		{ID: 2, Title: "Tanto", Status: model.StatusAvailable},
	}); err != nil {
		t.Fatalf("first SaveSnapshot: %v", err)
	}
	if err := SaveSnapshot(path, []model.Listing{
		{ID: 3, Title: "Yari", Status: model.StatusAvailable},
	}); err != nil {
		t.Fatalf("second SaveSnapshot: %v", err)
	}

	out, err := LoadCatalogFromSQLite(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromSQLite: %v", err)
	}
	if len(out) != 1 || out[0].ID != 3 {
		t.Errorf("expected snapshot replaced with listing 3, got %+v", out)
	}
}

func TestLoadCatalogDispatch(t *testing.T) {
	jsonlPath := writeFile(t, "catalog.jsonl", `{"id": 1, "title": "Katana", "status": "available"}`+"\n")
	listings, err := LoadCatalog(jsonlPath)
	if err != nil {
		t.Fatalf("LoadCatalog jsonl: %v", err)
	}
	if len(listings) != 1 {
		t.Errorf("expected 1 listing from jsonl, got %d", len(listings))
	}

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	if err := SaveSnapshot(dbPath, []model.Listing{{ID: 9, Title: "Kabuto", Status: model.StatusAvailable}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	listings, err = LoadCatalog(dbPath)
	if err != nil {
		t.Fatalf("LoadCatalog sqlite: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != 9 {
		t.Errorf("expected listing 9 from sqlite, got %+v", listings)
	}
}
