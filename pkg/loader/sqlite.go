package loader

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS dealers (
	id       INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	domain   TEXT,
	location TEXT
);
CREATE TABLE IF NOT EXISTS listings (
	id            INTEGER PRIMARY KEY,
	title         TEXT,
	title_ja      TEXT,
	category      TEXT,
	certification TEXT,
	period        TEXT,
	signature     TEXT,
	status        TEXT NOT NULL,
	price_jpy     INTEGER,
	price_on_ask  INTEGER,
	nagasa_cm     REAL,
	description   TEXT,
	url           TEXT,
	image_url     TEXT,
	dealer_id     INTEGER,
	created_at    TEXT,
	updated_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
CREATE INDEX IF NOT EXISTS idx_listings_dealer ON listings(dealer_id);
`

// LoadCatalogFromSQLite reads a snapshot written by SaveSnapshot.
func LoadCatalogFromSQLite(path string) ([]model.Listing, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT l.id, l.title, l.title_ja, l.category, l.certification,
		       l.period, l.signature, l.status, l.price_jpy, l.price_on_ask,
		       l.nagasa_cm, l.description, l.url, l.image_url,
		       l.created_at, l.updated_at,
		       d.id, d.name, d.domain, d.location
		FROM listings l
		LEFT JOIN dealers d ON d.id = l.dealer_id
		ORDER BY l.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	skipped := 0
	for rows.Next() {
		var (
			l          model.Listing
			title      sql.NullString
			titleJa    sql.NullString
			category   sql.NullString
			cert       sql.NullString
			period     sql.NullString
			signature  sql.NullString
			priceJPY   sql.NullInt64
			priceOnAsk sql.NullInt64
			nagasa     sql.NullFloat64
			desc       sql.NullString
			urlStr     sql.NullString
			imageURL   sql.NullString
			createdAt  sql.NullString
			updatedAt  sql.NullString
			dealerID   sql.NullInt64
			dealerName sql.NullString
			dealerDom  sql.NullString
			dealerLoc  sql.NullString
		)
		err := rows.Scan(&l.ID, &title, &titleJa, &category, &cert,
			&period, &signature, &l.Status, &priceJPY, &priceOnAsk,
			&nagasa, &desc, &urlStr, &imageURL,
			&createdAt, &updatedAt,
			&dealerID, &dealerName, &dealerDom, &dealerLoc)
		if err != nil {
			skipped++
			continue
		}

		l.Title = title.String
		l.TitleJa = titleJa.String
		l.Category = category.String
		l.Certification = cert.String
		l.Period = period.String
		l.Signature = model.SignatureStatus(signature.String)
		l.PriceJPY = priceJPY.Int64
		l.PriceOnAsk = priceOnAsk.Int64 != 0
		l.NagasaCM = nagasa.Float64
		l.Description = desc.String
		l.URL = urlStr.String
		l.ImageURL = imageURL.String
		l.CreatedAt = parseSnapshotTime(createdAt)
		l.UpdatedAt = parseSnapshotTime(updatedAt)
		if dealerID.Valid {
			l.Dealer = &model.Dealer{
				ID:       dealerID.Int64,
				Name:     dealerName.String,
				Domain:   dealerDom.String,
				Location: dealerLoc.String,
			}
		}
		if err := l.Validate(); err != nil {
			skipped++
			continue
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}
	if skipped > 0 {
		log.Printf("Warning: skipped %d unreadable snapshot rows in %s", skipped, path)
	}
	return listings, nil
}

// SaveSnapshot writes the catalog to a sqlite snapshot at path,
// replacing any existing contents.
func SaveSnapshot(path string, listings []model.Listing) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM listings`); err != nil {
		return fmt.Errorf("failed to clear listings: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM dealers`); err != nil {
		return fmt.Errorf("failed to clear dealers: %w", err)
	}

	dealerStmt, err := tx.Prepare(`INSERT OR REPLACE INTO dealers (id, name, domain, location) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dealer insert: %w", err)
	}
	defer dealerStmt.Close()

	listingStmt, err := tx.Prepare(`INSERT OR REPLACE INTO listings
		(id, title, title_ja, category, certification, period, signature,
		 status, price_jpy, price_on_ask, nagasa_cm, description, url,
		 image_url, dealer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare listing insert: %w", err)
	}
	defer listingStmt.Close()

	for _, l := range listings {
		var dealerID any
		if l.Dealer != nil {
			dealerID = l.Dealer.ID
			if _, err := dealerStmt.Exec(l.Dealer.ID, l.Dealer.Name, l.Dealer.Domain, l.Dealer.Location); err != nil {
				return fmt.Errorf("failed to write dealer %d: %w", l.Dealer.ID, err)
			}
		}
		onAsk := 0
		if l.PriceOnAsk {
			onAsk = 1
		}
		_, err := listingStmt.Exec(l.ID, l.Title, l.TitleJa, l.Category,
			l.Certification, l.Period, string(l.Signature), string(l.Status),
			l.PriceJPY, onAsk, l.NagasaCM, l.Description, l.URL, l.ImageURL,
			dealerID, formatSnapshotTime(l.CreatedAt), formatSnapshotTime(l.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to write listing %d: %w", l.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func formatSnapshotTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseSnapshotTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
