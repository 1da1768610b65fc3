package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/airport-lookup/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS airports (
	id                INTEGER PRIMARY KEY,
	ident             TEXT NOT NULL UNIQUE,
	type              TEXT NOT NULL,
	name              TEXT NOT NULL,
	latitude_deg      REAL,
	longitude_deg     REAL,
	elevation_ft      INTEGER,
	continent         TEXT NOT NULL DEFAULT '',
	iso_country       TEXT NOT NULL DEFAULT '',
	iso_region        TEXT NOT NULL DEFAULT '',
	municipality      TEXT,
	scheduled_service INTEGER NOT NULL DEFAULT 0,
	iata_code         TEXT,
	gps_code          TEXT,
	local_code        TEXT,
	home_link         TEXT,
	wikipedia_link    TEXT,
	keywords          TEXT
);

CREATE TABLE IF NOT EXISTS runways (
	id              INTEGER PRIMARY KEY,
	airport_ref     INTEGER NOT NULL REFERENCES airports(id),
	airport_ident   TEXT NOT NULL,
	length_ft       INTEGER,
	width_ft        INTEGER,
	surface         TEXT,
	lighted         INTEGER NOT NULL DEFAULT 0,
	closed          INTEGER NOT NULL DEFAULT 0,
	le_ident        TEXT,
	le_heading_degt REAL,
	he_ident        TEXT,
	he_heading_degt REAL
);

CREATE TABLE IF NOT EXISTS frequencies (
	id            INTEGER PRIMARY KEY,
	airport_ref   INTEGER NOT NULL REFERENCES airports(id),
	airport_ident TEXT NOT NULL,
	type          TEXT NOT NULL,
	description   TEXT,
	frequency_mhz REAL
);

CREATE TABLE IF NOT EXISTS navaids (
	id                 INTEGER PRIMARY KEY,
	ident              TEXT NOT NULL,
	name               TEXT NOT NULL,
	type               TEXT NOT NULL,
	frequency_khz      INTEGER,
	latitude_deg       REAL,
	longitude_deg      REAL,
	elevation_ft       INTEGER,
	dme_frequency_khz  INTEGER,
	dme_channel        TEXT,
	associated_airport TEXT
);

CREATE TABLE IF NOT EXISTS countries (
	id        INTEGER PRIMARY KEY,
	code      TEXT NOT NULL UNIQUE,
	name      TEXT NOT NULL,
	continent TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS regions (
	id          INTEGER PRIMARY KEY,
	code        TEXT NOT NULL UNIQUE,
	local_code  TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	continent   TEXT NOT NULL DEFAULT '',
	iso_country TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ils_associations (
	airport_ident TEXT NOT NULL,
	runway_ident  TEXT NOT NULL,
	PRIMARY KEY (airport_ident, runway_ident)
);

CREATE INDEX IF NOT EXISTS idx_airports_iata ON airports(iata_code);
CREATE INDEX IF NOT EXISTS idx_airports_country ON airports(iso_country);
CREATE INDEX IF NOT EXISTS idx_airports_type ON airports(type);
CREATE INDEX IF NOT EXISTS idx_airports_municipality ON airports(municipality);
CREATE INDEX IF NOT EXISTS idx_runways_airport ON runways(airport_ident);
CREATE INDEX IF NOT EXISTS idx_frequencies_airport ON frequencies(airport_ident);
CREATE INDEX IF NOT EXISTS idx_navaids_airport ON navaids(associated_airport);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const airportColumns = `id, ident, type, name, latitude_deg, longitude_deg, elevation_ft,
	continent, iso_country, iso_region, municipality, scheduled_service,
	iata_code, gps_code, local_code, home_link, wikipedia_link, keywords`

func (s *SQLiteStore) GetAirport(ctx context.Context, ident string) (*model.Airport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+airportColumns+` FROM airports WHERE ident = ?`, ident)

	a, err := scanAirport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get airport")
	}
	return a, nil
}

func (s *SQLiteStore) SearchCandidates(ctx context.Context, code, text string) ([]model.SearchCandidate, error) {
	prefix := escapeLike(code) + "%"
	contains := "%" + escapeLike(code) + "%"
	// SQLite's UPPER() folds ASCII only, so the uppercased pattern misses
	// names like "Zürich". The original-cased pattern keeps non-ASCII text
	// selectable; ranking re-checks every candidate in memory, so the extra
	// OR can only over-select.
	containsOrig := "%" + escapeLike(text) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.ident, a.type, a.name, a.latitude_deg, a.longitude_deg, a.elevation_ft,
		       a.continent, a.iso_country, a.iso_region, a.municipality, a.scheduled_service,
		       a.iata_code, a.gps_code, a.local_code, a.home_link, a.wikipedia_link, a.keywords,
		       r.name, c.name
		FROM airports a
		LEFT JOIN regions r ON r.code = a.iso_region
		LEFT JOIN countries c ON c.code = a.iso_country
		WHERE a.ident = ? OR a.iata_code = ?
		   OR a.ident LIKE ? ESCAPE '\' OR a.iata_code LIKE ? ESCAPE '\'
		   OR UPPER(a.municipality) LIKE ? ESCAPE '\' OR a.municipality LIKE ? ESCAPE '\'
		   OR UPPER(a.name) LIKE ? ESCAPE '\' OR a.name LIKE ? ESCAPE '\'
		   OR UPPER(a.iso_region) LIKE ? ESCAPE '\'
		   OR UPPER(r.name) LIKE ? ESCAPE '\' OR r.name LIKE ? ESCAPE '\'
		   OR UPPER(a.iso_country) LIKE ? ESCAPE '\'
		   OR UPPER(c.name) LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\'`,
		code, code, prefix, prefix,
		contains, containsOrig, contains, containsOrig, contains,
		contains, containsOrig, contains, contains, containsOrig,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search candidates")
	}
	defer rows.Close()

	var cands []model.SearchCandidate
	for rows.Next() {
		var c model.SearchCandidate
		if err := rows.Scan(
			&c.ID, &c.Ident, &c.Type, &c.Name, &c.Latitude, &c.Longitude, &c.ElevationFt,
			&c.Continent, &c.ISOCountry, &c.ISORegion, &c.Municipality, &c.ScheduledService,
			&c.IATACode, &c.GPSCode, &c.LocalCode, &c.HomeLink, &c.WikipediaLink, &c.Keywords,
			&c.RegionName, &c.CountryName,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search candidate")
		}
		cands = append(cands, c)
	}
	return cands, eris.Wrap(rows.Err(), "sqlite: iterate search candidates")
}

func (s *SQLiteStore) ListLocated(ctx context.Context, types []model.AirportType) ([]model.Airport, error) {
	if len(types) == 0 {
		return nil, eris.New("sqlite: list located: no types")
	}

	placeholders := make([]string, len(types))
	args := make([]any, len(types))
	for i, t := range types {
		placeholders[i] = "?"
		args[i] = string(t)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM airports
		 WHERE latitude_deg IS NOT NULL AND longitude_deg IS NOT NULL
		   AND type IN (%s)`,
		airportColumns, strings.Join(placeholders, ", "),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list located")
	}
	defer rows.Close()
	return collectAirports(rows, "sqlite")
}

func (s *SQLiteStore) ListByCountry(ctx context.Context, filter CountryFilter) ([]model.Airport, error) {
	query := `SELECT ` + airportColumns + ` FROM airports WHERE iso_country = ?`
	args := []any{filter.Country}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Region != "" {
		query += ` AND iso_region = ?`
		args = append(args, filter.Region)
	}
	if filter.ILSOnly {
		query += ` AND EXISTS (SELECT 1 FROM ils_associations i WHERE i.airport_ident = airports.ident)`
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list by country")
	}
	defer rows.Close()
	return collectAirports(rows, "sqlite")
}

func (s *SQLiteStore) CountByCountry(ctx context.Context, country string) (*CountryCounts, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN type = 'large_airport' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'medium_airport' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'small_airport' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'heliport' THEN 1 ELSE 0 END), 0),
		       (SELECT COUNT(DISTINCT i.airport_ident)
		        FROM ils_associations i
		        JOIN airports b ON b.ident = i.airport_ident
		        WHERE b.iso_country = ?)
		FROM airports WHERE iso_country = ?`,
		country, country,
	)

	var c CountryCounts
	if err := row.Scan(&c.Total, &c.Large, &c.Medium, &c.Small, &c.Heliport, &c.ILSVerified); err != nil {
		return nil, eris.Wrap(err, "sqlite: count by country")
	}
	return &c, nil
}

func (s *SQLiteStore) ListRunways(ctx context.Context, airportIdent string) ([]model.Runway, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, airport_ref, airport_ident, length_ft, width_ft, surface, lighted, closed,
		       le_ident, le_heading_degt, he_ident, he_heading_degt
		FROM runways WHERE airport_ident = ? ORDER BY le_ident`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runways")
	}
	defer rows.Close()

	var runways []model.Runway
	for rows.Next() {
		var r model.Runway
		if err := rows.Scan(
			&r.ID, &r.AirportRef, &r.AirportIdent, &r.LengthFt, &r.WidthFt, &r.Surface,
			&r.Lighted, &r.Closed, &r.LEIdent, &r.LEHeadingDegT, &r.HEIdent, &r.HEHeadingDegT,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan runway")
		}
		runways = append(runways, r)
	}
	return runways, eris.Wrap(rows.Err(), "sqlite: iterate runways")
}

func (s *SQLiteStore) ListFrequencies(ctx context.Context, airportIdent string) ([]model.Frequency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, airport_ref, airport_ident, type, description, frequency_mhz
		FROM frequencies WHERE airport_ident = ? ORDER BY type`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list frequencies")
	}
	defer rows.Close()

	var freqs []model.Frequency
	for rows.Next() {
		var f model.Frequency
		if err := rows.Scan(
			&f.ID, &f.AirportRef, &f.AirportIdent, &f.Type, &f.Description, &f.FrequencyMhz,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan frequency")
		}
		freqs = append(freqs, f)
	}
	return freqs, eris.Wrap(rows.Err(), "sqlite: iterate frequencies")
}

func (s *SQLiteStore) ListNavaids(ctx context.Context, airportIdent string) ([]model.Navaid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ident, name, type, frequency_khz, latitude_deg, longitude_deg, elevation_ft,
		       dme_frequency_khz, dme_channel, associated_airport
		FROM navaids WHERE associated_airport = ? ORDER BY ident`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list navaids")
	}
	defer rows.Close()

	var navaids []model.Navaid
	for rows.Next() {
		var n model.Navaid
		if err := rows.Scan(
			&n.ID, &n.Ident, &n.Name, &n.Type, &n.FrequencyKhz, &n.Latitude, &n.Longitude,
			&n.ElevationFt, &n.DMEFrequencyKhz, &n.DMEChannel, &n.AssociatedAirport,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan navaid")
		}
		navaids = append(navaids, n)
	}
	return navaids, eris.Wrap(rows.Err(), "sqlite: iterate navaids")
}

func (s *SQLiteStore) ListILS(ctx context.Context, airportIdent string) ([]model.ILSAssociation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT airport_ident, runway_ident FROM ils_associations
		WHERE airport_ident = ? ORDER BY runway_ident`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list ils")
	}
	defer rows.Close()

	var assocs []model.ILSAssociation
	for rows.Next() {
		var a model.ILSAssociation
		if err := rows.Scan(&a.AirportIdent, &a.RunwayIdent); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ils")
		}
		assocs = append(assocs, a)
	}
	return assocs, eris.Wrap(rows.Err(), "sqlite: iterate ils")
}

// Bulk load

func (s *SQLiteStore) ReplaceAirports(ctx context.Context, airports []model.Airport) (int64, error) {
	return s.replace(ctx, "airports", `
		INSERT INTO airports (id, ident, type, name, latitude_deg, longitude_deg, elevation_ft,
			continent, iso_country, iso_region, municipality, scheduled_service,
			iata_code, gps_code, local_code, home_link, wikipedia_link, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(airports), func(i int) []any {
			a := &airports[i]
			return []any{
				a.ID, a.Ident, string(a.Type), a.Name, a.Latitude, a.Longitude, a.ElevationFt,
				a.Continent, a.ISOCountry, a.ISORegion, a.Municipality, a.ScheduledService,
				a.IATACode, a.GPSCode, a.LocalCode, a.HomeLink, a.WikipediaLink, a.Keywords,
			}
		})
}

func (s *SQLiteStore) ReplaceRunways(ctx context.Context, runways []model.Runway) (int64, error) {
	return s.replace(ctx, "runways", `
		INSERT INTO runways (id, airport_ref, airport_ident, length_ft, width_ft, surface,
			lighted, closed, le_ident, le_heading_degt, he_ident, he_heading_degt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(runways), func(i int) []any {
			r := &runways[i]
			return []any{
				r.ID, r.AirportRef, r.AirportIdent, r.LengthFt, r.WidthFt, r.Surface,
				r.Lighted, r.Closed, r.LEIdent, r.LEHeadingDegT, r.HEIdent, r.HEHeadingDegT,
			}
		})
}

func (s *SQLiteStore) ReplaceFrequencies(ctx context.Context, freqs []model.Frequency) (int64, error) {
	return s.replace(ctx, "frequencies", `
		INSERT INTO frequencies (id, airport_ref, airport_ident, type, description, frequency_mhz)
		VALUES (?, ?, ?, ?, ?, ?)`,
		len(freqs), func(i int) []any {
			f := &freqs[i]
			return []any{f.ID, f.AirportRef, f.AirportIdent, f.Type, f.Description, f.FrequencyMhz}
		})
}

func (s *SQLiteStore) ReplaceNavaids(ctx context.Context, navaids []model.Navaid) (int64, error) {
	return s.replace(ctx, "navaids", `
		INSERT INTO navaids (id, ident, name, type, frequency_khz, latitude_deg, longitude_deg,
			elevation_ft, dme_frequency_khz, dme_channel, associated_airport)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(navaids), func(i int) []any {
			n := &navaids[i]
			return []any{
				n.ID, n.Ident, n.Name, n.Type, n.FrequencyKhz, n.Latitude, n.Longitude,
				n.ElevationFt, n.DMEFrequencyKhz, n.DMEChannel, n.AssociatedAirport,
			}
		})
}

func (s *SQLiteStore) ReplaceCountries(ctx context.Context, countries []model.Country) (int64, error) {
	return s.replace(ctx, "countries", `
		INSERT INTO countries (id, code, name, continent) VALUES (?, ?, ?, ?)`,
		len(countries), func(i int) []any {
			c := &countries[i]
			return []any{c.ID, c.Code, c.Name, c.Continent}
		})
}

func (s *SQLiteStore) ReplaceRegions(ctx context.Context, regions []model.Region) (int64, error) {
	return s.replace(ctx, "regions", `
		INSERT INTO regions (id, code, local_code, name, continent, iso_country)
		VALUES (?, ?, ?, ?, ?, ?)`,
		len(regions), func(i int) []any {
			r := &regions[i]
			return []any{r.ID, r.Code, r.LocalCode, r.Name, r.Continent, r.ISOCountry}
		})
}

func (s *SQLiteStore) UpsertILS(ctx context.Context, assocs []model.ILSAssociation) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert ils: begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ils_associations (airport_ident, runway_ident) VALUES (?, ?)
		ON CONFLICT (airport_ident, runway_ident) DO NOTHING`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert ils: prepare")
	}
	defer stmt.Close()

	var total int64
	for _, a := range assocs {
		res, err := stmt.ExecContext(ctx, a.AirportIdent, a.RunwayIdent)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert ils %s/%s", a.AirportIdent, a.RunwayIdent)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: upsert ils: rows affected")
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert ils: commit")
	}
	return total, nil
}

// replace deletes all rows of a table and inserts the given set inside
// one transaction. Import loads a full snapshot, so replace-not-merge is
// the correct semantic.
func (s *SQLiteStore) replace(ctx context.Context, table, insertSQL string, n int, rowArgs func(i int) []any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: replace %s: begin", table)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return 0, eris.Wrapf(err, "sqlite: replace %s: clear", table)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: replace %s: prepare", table)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, rowArgs(i)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: replace %s: insert row %d", table, i)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrapf(err, "sqlite: replace %s: commit", table)
	}
	return int64(n), nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanAirport(row scannable) (*model.Airport, error) {
	var a model.Airport
	err := row.Scan(
		&a.ID, &a.Ident, &a.Type, &a.Name, &a.Latitude, &a.Longitude, &a.ElevationFt,
		&a.Continent, &a.ISOCountry, &a.ISORegion, &a.Municipality, &a.ScheduledService,
		&a.IATACode, &a.GPSCode, &a.LocalCode, &a.HomeLink, &a.WikipediaLink, &a.Keywords,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAirports(rows *sql.Rows, backend string) ([]model.Airport, error) {
	var airports []model.Airport
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "%s: scan airport row", backend)
		}
		airports = append(airports, *a)
	}
	return airports, eris.Wrapf(rows.Err(), "%s: iterate airport rows", backend)
}

// escapeLike escapes LIKE metacharacters so user text can never widen a
// pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
