package model

import (
	"fmt"
	"time"
)

// Listing represents a single catalog entry aggregated from a dealer site.
type Listing struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	TitleJa       string          `json:"title_ja,omitempty"`
	Category      string          `json:"category"`
	Certification string          `json:"certification,omitempty"`
	Period        string          `json:"period,omitempty"`
	Signature     SignatureStatus `json:"signature,omitempty"`
	Status        Status          `json:"status"`
	PriceJPY      int64           `json:"price_jpy,omitempty"`
	PriceOnAsk    bool            `json:"price_on_ask,omitempty"`
	NagasaCM      float64         `json:"nagasa_cm,omitempty"`
	Description   string          `json:"description,omitempty"`
	URL           string          `json:"url,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	Dealer        *Dealer         `json:"dealer,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Clone creates a deep copy of the listing
func (l Listing) Clone() Listing {
	clone := l
	if l.Dealer != nil {
		d := *l.Dealer
		clone.Dealer = &d
	}
	return clone
}

// Validate checks if the listing data is logically valid
func (l *Listing) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("listing ID must be positive, got %d", l.ID)
	}
	if l.Title == "" && l.TitleJa == "" {
		return fmt.Errorf("listing %d has no title", l.ID)
	}
	if !l.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", l.Status)
	}
	if l.PriceJPY < 0 {
		return fmt.Errorf("negative price: %d", l.PriceJPY)
	}
	if l.NagasaCM < 0 {
		return fmt.Errorf("negative nagasa: %f", l.NagasaCM)
	}
	if !l.UpdatedAt.IsZero() && !l.CreatedAt.IsZero() && l.UpdatedAt.Before(l.CreatedAt) {
		return fmt.Errorf("updated_at (%v) cannot be before created_at (%v)", l.UpdatedAt, l.CreatedAt)
	}
	return nil
}

// DisplayTitle returns the romanized title, falling back to the Japanese one.
func (l *Listing) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	return l.TitleJa
}

// HasPrice returns true if the listing carries a concrete asking price.
func (l *Listing) HasPrice() bool {
	return !l.PriceOnAsk && l.PriceJPY > 0
}

// Status represents the sale state of a listing
type Status string

const (
	StatusAvailable Status = "available"
	StatusOnHold    Status = "on_hold"
	StatusSold      Status = "sold"
	StatusArchived  Status = "archived"
)

// IsValid returns true if the status is a recognized value
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOnHold, StatusSold, StatusArchived:
		return true
	}
	return false
}

// IsOpen returns true if the listing is still on the market
func (s Status) IsOpen() bool {
	return s == StatusAvailable || s == StatusOnHold
}

// SignatureStatus categorizes the signature state of a blade
type SignatureStatus string

const (
	SignatureZaimei SignatureStatus = "zaimei" // signed
	SignatureMumei  SignatureStatus = "mumei"  // unsigned
	SignatureGimei  SignatureStatus = "gimei"  // spurious signature
)

// IsValid returns true if the signature status is a recognized value.
// The empty string is valid: fittings and armor carry no signature field.
func (s SignatureStatus) IsValid() bool {
	switch s {
	case SignatureZaimei, SignatureMumei, SignatureGimei, "":
		return true
	}
	return false
}

// Dealer represents the source site a listing was aggregated from
type Dealer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Location string `json:"location,omitempty"`
}

// ListingPatch carries a partial update for a listing. Nil fields are
// left untouched when applied.
type ListingPatch struct {
	Status        *Status    `json:"status,omitempty"`
	PriceJPY      *int64     `json:"price_jpy,omitempty"`
	PriceOnAsk    *bool      `json:"price_on_ask,omitempty"`
	Certification *string    `json:"certification,omitempty"`
	Description   *string    `json:"description,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Apply merges the patch into the listing in place
func (p ListingPatch) Apply(l *Listing) {
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.PriceJPY != nil {
		l.PriceJPY = *p.PriceJPY
	}
	if p.PriceOnAsk != nil {
		l.PriceOnAsk = *p.PriceOnAsk
	}
	if p.Certification != nil {
		l.Certification = *p.Certification
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.UpdatedAt != nil {
		l.UpdatedAt = *p.UpdatedAt
	}
}

// AlertContext carries saved-search information handed over by a
// multi-listing deep link, used for the "match N of M" banner.
type AlertContext struct {
	SearchName   string `json:"search_name"`
	TotalMatches int    `json:"total_matches"`
}
