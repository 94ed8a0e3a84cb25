package pgstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/campusmaps/studyspot/core/csql"
	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

const amenitiesColumns = `amenities_id, wifi_available, wifi_network, outlets, seating, refreshments, environment, created_at, updated_at`

type amenitiesCollection struct {
	db *csql.DB
}

func (c *amenitiesCollection) table() string {
	return c.db.Schema + `."amenities"`
}

func environmentStrings(environment []model.Environment) pq.StringArray {
	values := make(pq.StringArray, len(environment))
	for i, e := range environment {
		values[i] = string(e)
	}
	return values
}

func scanAmenities(row scanner, extra ...interface{}) (model.Amenities, error) {
	var m model.Amenities
	var wifiNetwork, refreshments sql.NullString
	var environment pq.StringArray
	dest := []interface{}{&m.ID, &m.WifiAvailable, &wifiNetwork, &m.Outlets,
		&m.Seating, &refreshments, &environment, &m.CreatedAt, &m.UpdatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return m, err
	}
	if wifiNetwork.Valid {
		m.WifiNetwork = &wifiNetwork.String
	}
	if refreshments.Valid {
		m.Refreshments = &refreshments.String
	}
	m.Environment = make([]model.Environment, len(environment))
	for i, e := range environment {
		m.Environment[i] = model.Environment(e)
	}
	return m, nil
}

func insertAmenities(ctx context.Context, db *csql.DB, tx *sql.Tx, m model.Amenities) error {
	query := `INSERT INTO ` + db.Schema + `."amenities" (` + amenitiesColumns + `) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	args := []interface{}{m.ID, m.WifiAvailable, m.WifiNetwork, m.Outlets,
		string(m.Seating), m.Refreshments, environmentStrings(m.Environment), m.CreatedAt, m.UpdatedAt}
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = db.ExecContext(ctx, query, args...)
	}
	return err
}

func (c *amenitiesCollection) Insert(ctx context.Context, create model.AmenitiesCreate) (model.Amenities, error) {
	m := model.NewAmenities(create, time.Now().UTC())
	if err := insertAmenities(ctx, c.db, nil, m); err != nil {
		return model.Amenities{}, mapError(err)
	}
	return m, nil
}

func (c *amenitiesCollection) Get(ctx context.Context, id uuid.UUID) (model.Amenities, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+amenitiesColumns+` FROM `+c.table()+` WHERE amenities_id = $1;`, id)
	m, err := scanAmenities(row)
	if err != nil {
		return model.Amenities{}, mapError(err)
	}
	return m, nil
}

func amenitiesAssignments(b *updateBuilder, u model.AmenitiesUpdate) {
	if u.WifiAvailable != nil {
		b.set("wifi_available", *u.WifiAvailable)
	}
	if u.WifiNetwork != nil {
		b.set("wifi_network", *u.WifiNetwork)
	}
	if u.Outlets != nil {
		b.set("outlets", *u.Outlets)
	}
	if u.Seating != nil {
		b.set("seating", string(*u.Seating))
	}
	if u.Refreshments != nil {
		b.set("refreshments", *u.Refreshments)
	}
	if u.Environment != nil {
		b.set("environment", environmentStrings(*u.Environment))
	}
}

func (c *amenitiesCollection) Update(ctx context.Context, id uuid.UUID, update model.AmenitiesUpdate) (model.Amenities, error) {
	var b updateBuilder
	amenitiesAssignments(&b, update)
	if b.empty() {
		return model.Amenities{}, store.ErrNoFields
	}
	query, args := b.build(c.table(), "amenities_id", id, time.Now().UTC())
	row := c.db.QueryRowContext(ctx, query+` RETURNING `+amenitiesColumns+`;`, args...)
	m, err := scanAmenities(row)
	if err != nil {
		return model.Amenities{}, mapError(err)
	}
	return m, nil
}

func (c *amenitiesCollection) Delete(ctx context.Context, id uuid.UUID) (model.Amenities, error) {
	row := c.db.QueryRowContext(ctx, `DELETE FROM `+c.table()+` WHERE amenities_id = $1 RETURNING `+amenitiesColumns+`;`, id)
	m, err := scanAmenities(row)
	if err != nil {
		return model.Amenities{}, mapError(err)
	}
	return m, nil
}

func (c *amenitiesCollection) List(ctx context.Context, filter store.AmenitiesFilter, page store.Page) ([]model.Amenities, int, error) {
	var qb queryBuilder
	if filter.Wifi != nil {
		qb.whereEqual("wifi_available", *filter.Wifi)
	}
	if filter.Outlets != nil {
		qb.whereEqual("outlets", *filter.Outlets)
	}
	if filter.Seating != "" {
		qb.whereEqual("seating", string(filter.Seating))
	}

	query, args := qb.selectPage(amenitiesColumns, c.table(), "created_at DESC, amenities_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.Amenities{}
	var total int
	for rows.Next() {
		m, err := scanAmenities(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if total == 0 && page.Number > 1 {
		countQuery, countArgs := qb.selectCount(c.table())
		if err := c.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return result, total, nil
}
