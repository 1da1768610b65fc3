package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/airport-lookup/internal/db"
	"github.com/sells-group/airport-lookup/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS airports (
	id                BIGINT PRIMARY KEY,
	ident             TEXT NOT NULL UNIQUE,
	type              TEXT NOT NULL,
	name              TEXT NOT NULL,
	latitude_deg      DOUBLE PRECISION,
	longitude_deg     DOUBLE PRECISION,
	elevation_ft      BIGINT,
	continent         TEXT NOT NULL DEFAULT '',
	iso_country       TEXT NOT NULL DEFAULT '',
	iso_region        TEXT NOT NULL DEFAULT '',
	municipality      TEXT,
	scheduled_service BOOLEAN NOT NULL DEFAULT false,
	iata_code         TEXT,
	gps_code          TEXT,
	local_code        TEXT,
	home_link         TEXT,
	wikipedia_link    TEXT,
	keywords          TEXT
);

CREATE TABLE IF NOT EXISTS runways (
	id              BIGINT PRIMARY KEY,
	airport_ref     BIGINT NOT NULL REFERENCES airports(id),
	airport_ident   TEXT NOT NULL,
	length_ft       BIGINT,
	width_ft        BIGINT,
	surface         TEXT,
	lighted         BOOLEAN NOT NULL DEFAULT false,
	closed          BOOLEAN NOT NULL DEFAULT false,
	le_ident        TEXT,
	le_heading_degt DOUBLE PRECISION,
	he_ident        TEXT,
	he_heading_degt DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS frequencies (
	id            BIGINT PRIMARY KEY,
	airport_ref   BIGINT NOT NULL REFERENCES airports(id),
	airport_ident TEXT NOT NULL,
	type          TEXT NOT NULL,
	description   TEXT,
	frequency_mhz DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS navaids (
	id                 BIGINT PRIMARY KEY,
	ident              TEXT NOT NULL,
	name               TEXT NOT NULL,
	type               TEXT NOT NULL,
	frequency_khz      BIGINT,
	latitude_deg       DOUBLE PRECISION,
	longitude_deg      DOUBLE PRECISION,
	elevation_ft       BIGINT,
	dme_frequency_khz  BIGINT,
	dme_channel        TEXT,
	associated_airport TEXT
);

CREATE TABLE IF NOT EXISTS countries (
	id        BIGINT PRIMARY KEY,
	code      TEXT NOT NULL UNIQUE,
	name      TEXT NOT NULL,
	continent TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS regions (
	id          BIGINT PRIMARY KEY,
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetAirport(ctx context.Context, ident string) (*model.Airport, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+airportColumns+` FROM airports WHERE ident = $1`, ident)

	a, err := scanAirport(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get airport")
	}
	return a, nil
}

func (s *PostgresStore) SearchCandidates(ctx context.Context, code, text string) ([]model.SearchCandidate, error) {
	prefix := escapeLike(code) + "%"
	contains := "%" + escapeLike(text) + "%"

	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.ident, a.type, a.name, a.latitude_deg, a.longitude_deg, a.elevation_ft,
		       a.continent, a.iso_country, a.iso_region, a.municipality, a.scheduled_service,
		       a.iata_code, a.gps_code, a.local_code, a.home_link, a.wikipedia_link, a.keywords,
		       r.name, c.name
		FROM airports a
		LEFT JOIN regions r ON r.code = a.iso_region
		LEFT JOIN countries c ON c.code = a.iso_country
		WHERE a.ident = $1 OR a.iata_code = $1
		   OR a.ident LIKE $2 OR a.iata_code LIKE $2
		   OR a.municipality ILIKE $3
		   OR a.name ILIKE $3
		   OR a.iso_region ILIKE $3
		   OR r.name ILIKE $3
		   OR a.iso_country ILIKE $3
		   OR c.name ILIKE $3`,
		code, prefix, contains,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search candidates")
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
			return nil, eris.Wrap(err, "postgres: scan search candidate")
		}
		cands = append(cands, c)
	}
	return cands, eris.Wrap(rows.Err(), "postgres: iterate search candidates")
}

func (s *PostgresStore) ListLocated(ctx context.Context, types []model.AirportType) ([]model.Airport, error) {
	if len(types) == 0 {
		return nil, eris.New("postgres: list located: no types")
	}

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+airportColumns+` FROM airports
		WHERE latitude_deg IS NOT NULL AND longitude_deg IS NOT NULL
		  AND type = ANY($1)`,
		names,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list located")
	}
	defer rows.Close()
	return collectAirportsPgx(rows)
}

func (s *PostgresStore) ListByCountry(ctx context.Context, filter CountryFilter) ([]model.Airport, error) {
	query := `SELECT ` + airportColumns + ` FROM airports WHERE iso_country = $1`
	args := []any{filter.Country}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		query += fmt.Sprintf(` AND iso_region = $%d`, len(args))
	}
	if filter.ILSOnly {
		query += ` AND EXISTS (SELECT 1 FROM ils_associations i WHERE i.airport_ident = airports.ident)`
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list by country")
	}
	defer rows.Close()
	return collectAirportsPgx(rows)
}

func (s *PostgresStore) CountByCountry(ctx context.Context, country string) (*CountryCounts, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN type = 'large_airport' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'medium_airport' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'small_airport' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = 'heliport' THEN 1 ELSE 0 END), 0),
		       (SELECT COUNT(DISTINCT i.airport_ident)
		        FROM ils_associations i
		        JOIN airports b ON b.ident = i.airport_ident
		        WHERE b.iso_country = $1)
		FROM airports WHERE iso_country = $1`,
		country,
	)

	var c CountryCounts
	if err := row.Scan(&c.Total, &c.Large, &c.Medium, &c.Small, &c.Heliport, &c.ILSVerified); err != nil {
		return nil, eris.Wrap(err, "postgres: count by country")
	}
	return &c, nil
}

func (s *PostgresStore) ListRunways(ctx context.Context, airportIdent string) ([]model.Runway, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, airport_ref, airport_ident, length_ft, width_ft, surface, lighted, closed,
		       le_ident, le_heading_degt, he_ident, he_heading_degt
		FROM runways WHERE airport_ident = $1 ORDER BY le_ident`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runways")
	}
	defer rows.Close()

	var runways []model.Runway
	for rows.Next() {
		var r model.Runway
		if err := rows.Scan(
			&r.ID, &r.AirportRef, &r.AirportIdent, &r.LengthFt, &r.WidthFt, &r.Surface,
			&r.Lighted, &r.Closed, &r.LEIdent, &r.LEHeadingDegT, &r.HEIdent, &r.HEHeadingDegT,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan runway")
		}
		runways = append(runways, r)
	}
	return runways, eris.Wrap(rows.Err(), "postgres: iterate runways")
}

func (s *PostgresStore) ListFrequencies(ctx context.Context, airportIdent string) ([]model.Frequency, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, airport_ref, airport_ident, type, description, frequency_mhz
		FROM frequencies WHERE airport_ident = $1 ORDER BY type`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list frequencies")
	}
	defer rows.Close()

	var freqs []model.Frequency
	for rows.Next() {
		var f model.Frequency
		if err := rows.Scan(
			&f.ID, &f.AirportRef, &f.AirportIdent, &f.Type, &f.Description, &f.FrequencyMhz,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan frequency")
		}
		freqs = append(freqs, f)
	}
	return freqs, eris.Wrap(rows.Err(), "postgres: iterate frequencies")
}

func (s *PostgresStore) ListNavaids(ctx context.Context, airportIdent string) ([]model.Navaid, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ident, name, type, frequency_khz, latitude_deg, longitude_deg, elevation_ft,
		       dme_frequency_khz, dme_channel, associated_airport
		FROM navaids WHERE associated_airport = $1 ORDER BY ident`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list navaids")
	}
	defer rows.Close()

	var navaids []model.Navaid
	for rows.Next() {
		var n model.Navaid
		if err := rows.Scan(
			&n.ID, &n.Ident, &n.Name, &n.Type, &n.FrequencyKhz, &n.Latitude, &n.Longitude,
			&n.ElevationFt, &n.DMEFrequencyKhz, &n.DMEChannel, &n.AssociatedAirport,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan navaid")
		}
		navaids = append(navaids, n)
	}
	return navaids, eris.Wrap(rows.Err(), "postgres: iterate navaids")
}

func (s *PostgresStore) ListILS(ctx context.Context, airportIdent string) ([]model.ILSAssociation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT airport_ident, runway_ident FROM ils_associations
		WHERE airport_ident = $1 ORDER BY runway_ident`,
		airportIdent,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list ils")
	}
	defer rows.Close()

	var assocs []model.ILSAssociation
	for rows.Next() {
		var a model.ILSAssociation
		if err := rows.Scan(&a.AirportIdent, &a.RunwayIdent); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ils")
		}
		assocs = append(assocs, a)
	}
	return assocs, eris.Wrap(rows.Err(), "postgres: iterate ils")
}

// Bulk load

func (s *PostgresStore) ReplaceAirports(ctx context.Context, airports []model.Airport) (int64, error) {
	rows := make([][]any, len(airports))
	for i := range airports {
		a := &airports[i]
		rows[i] = []any{
			a.ID, a.Ident, string(a.Type), a.Name, a.Latitude, a.Longitude, a.ElevationFt,
			a.Continent, a.ISOCountry, a.ISORegion, a.Municipality, a.ScheduledService,
			a.IATACode, a.GPSCode, a.LocalCode, a.HomeLink, a.WikipediaLink, a.Keywords,
		}
	}
	return s.replace(ctx, "airports", []string{
		"id", "ident", "type", "name", "latitude_deg", "longitude_deg", "elevation_ft",
		"continent", "iso_country", "iso_region", "municipality", "scheduled_service",
		"iata_code", "gps_code", "local_code", "home_link", "wikipedia_link", "keywords",
	}, rows)
}

func (s *PostgresStore) ReplaceRunways(ctx context.Context, runways []model.Runway) (int64, error) {
	rows := make([][]any, len(runways))
	for i := range runways {
		r := &runways[i]
		rows[i] = []any{
			r.ID, r.AirportRef, r.AirportIdent, r.LengthFt, r.WidthFt, r.Surface,
			r.Lighted, r.Closed, r.LEIdent, r.LEHeadingDegT, r.HEIdent, r.HEHeadingDegT,
		}
	}
	return s.replace(ctx, "runways", []string{
		"id", "airport_ref", "airport_ident", "length_ft", "width_ft", "surface",
		"lighted", "closed", "le_ident", "le_heading_degt", "he_ident", "he_heading_degt",
	}, rows)
}

func (s *PostgresStore) ReplaceFrequencies(ctx context.Context, freqs []model.Frequency) (int64, error) {
	rows := make([][]any, len(freqs))
	for i := range freqs {
		f := &freqs[i]
		rows[i] = []any{f.ID, f.AirportRef, f.AirportIdent, f.Type, f.Description, f.FrequencyMhz}
	}
	return s.replace(ctx, "frequencies", []string{
		"id", "airport_ref", "airport_ident", "type", "description", "frequency_mhz",
	}, rows)
}

func (s *PostgresStore) ReplaceNavaids(ctx context.Context, navaids []model.Navaid) (int64, error) {
	rows := make([][]any, len(navaids))
	for i := range navaids {
		n := &navaids[i]
		rows[i] = []any{
			n.ID, n.Ident, n.Name, n.Type, n.FrequencyKhz, n.Latitude, n.Longitude,
			n.ElevationFt, n.DMEFrequencyKhz, n.DMEChannel, n.AssociatedAirport,
		}
	}
	return s.replace(ctx, "navaids", []string{
		"id", "ident", "name", "type", "frequency_khz", "latitude_deg", "longitude_deg",
		"elevation_ft", "dme_frequency_khz", "dme_channel", "associated_airport",
	}, rows)
}

func (s *PostgresStore) ReplaceCountries(ctx context.Context, countries []model.Country) (int64, error) {
	rows := make([][]any, len(countries))
	for i := range countries {
		c := &countries[i]
		rows[i] = []any{c.ID, c.Code, c.Name, c.Continent}
	}
	return s.replace(ctx, "countries", []string{"id", "code", "name", "continent"}, rows)
}

func (s *PostgresStore) ReplaceRegions(ctx context.Context, regions []model.Region) (int64, error) {
	rows := make([][]any, len(regions))
	for i := range regions {
		r := &regions[i]
		rows[i] = []any{r.ID, r.Code, r.LocalCode, r.Name, r.Continent, r.ISOCountry}
	}
	return s.replace(ctx, "regions", []string{
		"id", "code", "local_code", "name", "continent", "iso_country",
	}, rows)
}

func (s *PostgresStore) UpsertILS(ctx context.Context, assocs []model.ILSAssociation) (int64, error) {
	rows := make([][]any, len(assocs))
	for i, a := range assocs {
		rows[i] = []any{a.AirportIdent, a.RunwayIdent}
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "ils_associations",
		Columns:      []string{"airport_ident", "runway_ident"},
		ConflictKeys: []string{"airport_ident", "runway_ident"},
	}, rows)
}

// replace clears a table and COPYes the new snapshot inside one tx.
func (s *PostgresStore) replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: replace %s: begin", table)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM `+pgx.Identifier{table}.Sanitize()); err != nil {
		return 0, eris.Wrapf(err, "postgres: replace %s: clear", table)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: replace %s: COPY", table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrapf(err, "postgres: replace %s: commit", table)
	}
	return n, nil
}

func collectAirportsPgx(rows pgx.Rows) ([]model.Airport, error) {
	var airports []model.Airport
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan airport row")
		}
		airports = append(airports, *a)
	}
	return airports, eris.Wrap(rows.Err(), "postgres: iterate airport rows")
}
