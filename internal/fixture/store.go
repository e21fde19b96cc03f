// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fixture is a local stand-in for the listing backend. It loads
// listings from YAML into an in-memory SQLite database and serves the
// same REST contract the listing client consumes.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/estate-search/pkg/types"
)

// Listing is one fixture record: the card fields plus the attributes the
// backend filters on but does not return.
type Listing struct {
	types.PropertySummary `yaml:",inline"`

	PostedBy     string    `yaml:"posted_by,omitempty"`
	Availability string    `yaml:"availability,omitempty"`
	Amenities    []string  `yaml:"amenities,omitempty"`
	ListedAt     time.Time `yaml:"listed_at,omitempty"`
}

type listingFile struct {
	Listings []Listing `yaml:"listings"`
}

// ReadListings parses a YAML file of the form {listings: [...]}.
func ReadListings(path string) ([]Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture data: %w", err)
	}
	var f listingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture data %s: %w", path, err)
	}
	return f.Listings, nil
}

// row is the SQLite projection of a Listing.
type row struct {
	ID              string  `db:"id"`
	PropertySubType string  `db:"property_sub_type"`
	PropertyType    string  `db:"property_type"`
	Purpose         string  `db:"purpose"`
	Bedrooms        int     `db:"bedrooms"`
	Bathrooms       int     `db:"bathrooms"`
	ExpectedPrice   int64   `db:"expected_price"`
	PricePerSqFt    int64   `db:"price_per_sq_ft"`
	Locality        string  `db:"locality"`
	City            string  `db:"city"`
	LocationSlug    string  `db:"location_slug"`
	CarpetArea      float64 `db:"carpet_area"`
	BuiltUpArea     float64 `db:"built_up_area"`
	PlotArea        float64 `db:"plot_area"`
	AreaUnit        string  `db:"area_unit"`
	Furnishing      string  `db:"furnishing"`
	Ownership       string  `db:"ownership"`
	PostedBy        string  `db:"posted_by"`
	Availability    string  `db:"availability"`
	Amenities       string  `db:"amenities"`
	Photos          string  `db:"photos"`
	Status          string  `db:"status"`
	Featured        bool    `db:"featured"`
	ListedAt        string  `db:"listed_at"`
}

func toRow(l Listing) (row, error) {
	photos, err := json.Marshal(l.Photos)
	if err != nil {
		return row{}, err
	}
	amenities := ""
	if len(l.Amenities) > 0 {
		tags := make([]string, 0, len(l.Amenities))
		for _, a := range l.Amenities {
			tags = append(tags, strings.ToLower(strings.TrimSpace(a)))
		}
		// Padded so a tag matches with LIKE '%,tag,%'.
		amenities = "," + strings.Join(tags, ",") + ","
	}
	listedAt := ""
	if !l.ListedAt.IsZero() {
		listedAt = l.ListedAt.UTC().Format(time.RFC3339)
	}
	p := l.PropertySummary
	return row{
		ID:              p.ID,
		PropertySubType: p.PropertySubType,
		PropertyType:    strings.ToLower(p.PropertyType),
		Purpose:         string(purposeKey(p.Purpose)),
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		ExpectedPrice:   p.ExpectedPrice,
		PricePerSqFt:    p.PricePerSqFt,
		Locality:        p.Locality,
		City:            p.City,
		LocationSlug:    types.Slug(p.Locality + " " + p.City),
		CarpetArea:      p.CarpetArea,
		BuiltUpArea:     p.BuiltUpArea,
		PlotArea:        p.PlotArea,
		AreaUnit:        p.AreaUnit,
		Furnishing:      string(types.ParseFurnishing(p.Furnishing)),
		Ownership:       p.Ownership,
		PostedBy:        string(types.ParsePostedBy(l.PostedBy)),
		Availability:    string(types.ParseAvailability(l.Availability)),
		Amenities:       amenities,
		Photos:          string(photos),
		Status:          p.Status,
		Featured:        p.Featured,
		ListedAt:        listedAt,
	}, nil
}

func (r row) summary() types.PropertySummary {
	var photos []string
	_ = json.Unmarshal([]byte(r.Photos), &photos)
	return types.PropertySummary{
		ID:              r.ID,
		PropertySubType: r.PropertySubType,
		PropertyType:    r.PropertyType,
		Purpose:         types.Purpose(r.Purpose).Label(),
		Bedrooms:        r.Bedrooms,
		Bathrooms:       r.Bathrooms,
		ExpectedPrice:   r.ExpectedPrice,
		PricePerSqFt:    r.PricePerSqFt,
		Locality:        r.Locality,
		City:            r.City,
		CarpetArea:      r.CarpetArea,
		BuiltUpArea:     r.BuiltUpArea,
		PlotArea:        r.PlotArea,
		AreaUnit:        r.AreaUnit,
		Furnishing:      r.Furnishing,
		Ownership:       r.Ownership,
		Photos:          photos,
		Status:          r.Status,
		Featured:        r.Featured,
	}
}

// purposeKey maps backend labels ("Sale", "Rent") and URL keys onto
// types.Purpose.
func purposeKey(s string) types.Purpose {
	switch types.Slug(s) {
	case "sale", "sell":
		return types.PurposeBuy
	}
	return types.ParsePurpose(s)
}

// Store is the in-memory listing database.
type Store struct {
	db *sqlx.DB
}

// NewStore opens an empty in-memory database and creates the schema.
func NewStore() (*Store, error) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Open creates a store and loads listings from the YAML file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	listings, err := ReadListings(path)
	if err != nil {
		return nil, err
	}
	s, err := NewStore()
	if err != nil {
		return nil, err
	}
	if err := s.Insert(ctx, listings...); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			property_sub_type TEXT,
			property_type TEXT,
			purpose TEXT,
			bedrooms INTEGER,
			bathrooms INTEGER,
			expected_price INTEGER,
			price_per_sq_ft INTEGER,
			locality TEXT,
			city TEXT,
			location_slug TEXT,
			carpet_area REAL,
			built_up_area REAL,
			plot_area REAL,
			area_unit TEXT,
			furnishing TEXT,
			ownership TEXT,
			posted_by TEXT,
			availability TEXT,
			amenities TEXT,
			photos TEXT,
			status TEXT,
			featured INTEGER,
			listed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_location ON properties(location_slug)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(expected_price)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const insertSQL = `INSERT OR REPLACE INTO properties (
	id, property_sub_type, property_type, purpose, bedrooms, bathrooms,
	expected_price, price_per_sq_ft, locality, city, location_slug,
	carpet_area, built_up_area, plot_area, area_unit, furnishing, ownership,
	posted_by, availability, amenities, photos, status, featured, listed_at
) VALUES (
	:id, :property_sub_type, :property_type, :purpose, :bedrooms, :bathrooms,
	:expected_price, :price_per_sq_ft, :locality, :city, :location_slug,
	:carpet_area, :built_up_area, :plot_area, :area_unit, :furnishing, :ownership,
	:posted_by, :availability, :amenities, :photos, :status, :featured, :listed_at
)`

// Insert adds or replaces listings in one transaction. Listings without
// an ID are rejected.
func (s *Store) Insert(ctx context.Context, listings ...Listing) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, l := range listings {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("listing %d has no id", i)
		}
		r, err := toRow(l)
		if err != nil {
			return fmt.Errorf("encoding listing %s: %w", l.ID, err)
		}
		if _, err := tx.NamedExecContext(ctx, insertSQL, r); err != nil {
			return fmt.Errorf("inserting listing %s: %w", l.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored listings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM properties`); err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}
	return n, nil
}

// Get returns the listing with id, or false when there is none.
func (s *Store) Get(ctx context.Context, id string) (types.PropertySummary, bool, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+columns+` FROM properties WHERE id = ?`, id); err != nil {
		return types.PropertySummary{}, false, fmt.Errorf("loading listing %s: %w", id, err)
	}
	if len(rows) == 0 {
		return types.PropertySummary{}, false, nil
	}
	return rows[0].summary(), true, nil
}

const columns = `id, property_sub_type, property_type, purpose, bedrooms, bathrooms,
	expected_price, price_per_sq_ft, locality, city, location_slug,
	carpet_area, built_up_area, plot_area, area_unit, furnishing, ownership,
	posted_by, availability, amenities, photos, status, featured, listed_at`

// List returns one page of listings matching intent and the total match
// count. Pages past the end return no items.
func (s *Store) List(ctx context.Context, intent types.SearchIntent, limit int) ([]types.PropertySummary, int, error) {
	intent = intent.Normalize()
	if limit <= 0 {
		limit = types.DefaultPageSize
	}
	where, args := whereClause(intent)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM properties WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("counting listings: %w", err)
	}

	q := `SELECT ` + columns + ` FROM properties WHERE ` + where +
		` ORDER BY ` + orderBy(intent.SortBy) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, (intent.Page-1)*limit)

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, fmt.Errorf("querying listings: %w", err)
	}
	items := make([]types.PropertySummary, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.summary())
	}
	return items, total, nil
}

// Search returns up to limit listings whose locality, city or sub-type
// contains term.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]types.PropertySummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []types.PropertySummary{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	like := "%" + escapeLike(strings.ToLower(term)) + "%"

	var rows []row
	err := s.db.SelectContext(ctx, &rows, `SELECT `+columns+` FROM properties
		WHERE lower(locality) LIKE ? ESCAPE '\'
		   OR lower(city) LIKE ? ESCAPE '\'
		   OR lower(property_sub_type) LIKE ? ESCAPE '\'
		ORDER BY featured DESC, rowid
		LIMIT ?`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("searching listings: %w", err)
	}
	items := make([]types.PropertySummary, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.summary())
	}
	return items, nil
}

func whereClause(intent types.SearchIntent) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if intent.Location != "" {
		clauses = append(clauses, `location_slug LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(intent.Location)+"%")
	}
	if intent.Purpose != types.PurposeUnset {
		clauses = append(clauses, "purpose = ?")
		args = append(args, string(intent.Purpose))
	}
	if intent.PropertyType != "" {
		clauses = append(clauses, "(property_type = ? OR lower(property_sub_type) = ?)")
		args = append(args, intent.PropertyType, intent.PropertyType)
	}
	if intent.Bedrooms != nil {
		clauses = append(clauses, "bedrooms = ?")
		args = append(args, *intent.Bedrooms)
	}
	if intent.MinPrice != nil {
		clauses = append(clauses, "expected_price >= ?")
		args = append(args, *intent.MinPrice)
	}
	if intent.MaxPrice != nil {
		clauses = append(clauses, "expected_price <= ?")
		args = append(args, *intent.MaxPrice)
	}
	if intent.Furnishing != types.FurnishingUnset {
		clauses = append(clauses, "furnishing = ?")
		args = append(args, string(intent.Furnishing))
	}
	if intent.PostedBy != types.PostedByUnset {
		clauses = append(clauses, "posted_by = ?")
		args = append(args, string(intent.PostedBy))
	}
	if intent.Availability != types.AvailabilityUnset {
		clauses = append(clauses, "availability = ?")
		args = append(args, string(intent.Availability))
	}
	for _, a := range intent.Amenities {
		clauses = append(clauses, `amenities LIKE ? ESCAPE '\'`)
		args = append(args, "%,"+escapeLike(strings.ToLower(a))+",%")
	}
	return strings.Join(clauses, " AND "), args
}

func orderBy(sort types.SortOrder) string {
	switch sort {
	case types.SortPriceAsc:
		return "expected_price ASC, rowid"
	case types.SortPriceDesc:
		return "expected_price DESC, rowid"
	case types.SortNewest:
		return "listed_at DESC, rowid"
	case types.SortAreaAsc:
		return "coalesce(nullif(carpet_area, 0), nullif(built_up_area, 0), plot_area) ASC, rowid"
	case types.SortAreaDesc:
		return "coalesce(nullif(carpet_area, 0), nullif(built_up_area, 0), plot_area) DESC, rowid"
	}
	return "featured DESC, rowid"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
