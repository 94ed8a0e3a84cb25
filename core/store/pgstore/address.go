package pgstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/csql"
	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

const addressColumns = `address_id, street, city, state, postal_code, latitude, longitude, neighborhood, created_at, updated_at`

type addressCollection struct {
	db *csql.DB
}

func (c *addressCollection) table() string {
	return c.db.Schema + `."address"`
}

// scanAddress reads one address row. Extra destinations (such as the
// full_count window of list queries) are appended to the scan list.
func scanAddress(row scanner, extra ...interface{}) (model.Address, error) {
	var a model.Address
	var latitude, longitude sql.NullFloat64
	dest := []interface{}{&a.ID, &a.Street, &a.City, &a.State, &a.PostalCode,
		&latitude, &longitude, &a.Neighborhood, &a.CreatedAt, &a.UpdatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return a, err
	}
	if latitude.Valid {
		a.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		a.Longitude = &longitude.Float64
	}
	return a, nil
}

// insertAddress writes a realized address row, within tx if one is given.
func insertAddress(ctx context.Context, db *csql.DB, tx *sql.Tx, a model.Address) error {
	query := `INSERT INTO ` + db.Schema + `."address" (` + addressColumns + `) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	args := []interface{}{a.ID, a.Street, a.City, a.State, a.PostalCode,
		a.Latitude, a.Longitude, string(a.Neighborhood), a.CreatedAt, a.UpdatedAt}
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = db.ExecContext(ctx, query, args...)
	}
	return err
}

func (c *addressCollection) Insert(ctx context.Context, create model.AddressCreate) (model.Address, error) {
	a := model.NewAddress(create, time.Now().UTC())
	if err := insertAddress(ctx, c.db, nil, a); err != nil {
		return model.Address{}, mapError(err)
	}
	return a, nil
}

func (c *addressCollection) Get(ctx context.Context, id uuid.UUID) (model.Address, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+addressColumns+` FROM `+c.table()+` WHERE address_id = $1;`, id)
	a, err := scanAddress(row)
	if err != nil {
		return model.Address{}, mapError(err)
	}
	return a, nil
}

// addressAssignments collects the supplied fields of a sparse address
// update into the builder.
func addressAssignments(b *updateBuilder, u model.AddressUpdate) {
	if u.Street != nil {
		b.set("street", *u.Street)
	}
	if u.City != nil {
		b.set("city", *u.City)
	}
	if u.State != nil {
		b.set("state", *u.State)
	}
	if u.PostalCode != nil {
		b.set("postal_code", *u.PostalCode)
	}
	if u.Latitude != nil {
		b.set("latitude", *u.Latitude)
	}
	if u.Longitude != nil {
		b.set("longitude", *u.Longitude)
	}
	if u.Neighborhood != nil {
		b.set("neighborhood", string(*u.Neighborhood))
	}
}

func (c *addressCollection) Update(ctx context.Context, id uuid.UUID, update model.AddressUpdate) (model.Address, error) {
	var b updateBuilder
	addressAssignments(&b, update)
	if b.empty() {
		return model.Address{}, store.ErrNoFields
	}
	query, args := b.build(c.table(), "address_id", id, time.Now().UTC())
	row := c.db.QueryRowContext(ctx, query+` RETURNING `+addressColumns+`;`, args...)
	a, err := scanAddress(row)
	if err != nil {
		return model.Address{}, mapError(err)
	}
	return a, nil
}

func (c *addressCollection) Delete(ctx context.Context, id uuid.UUID) (model.Address, error) {
	row := c.db.QueryRowContext(ctx, `DELETE FROM `+c.table()+` WHERE address_id = $1 RETURNING `+addressColumns+`;`, id)
	a, err := scanAddress(row)
	if err != nil {
		return model.Address{}, mapError(err)
	}
	return a, nil
}

func (c *addressCollection) List(ctx context.Context, filter store.AddressFilter, page store.Page) ([]model.Address, int, error) {
	var qb queryBuilder
	if filter.Street != "" {
		qb.whereSubstring("street", filter.Street)
	}
	if filter.City != "" {
		qb.whereEqual("city", filter.City)
	}
	if filter.State != "" {
		qb.whereEqual("state", filter.State)
	}
	if filter.PostalCode != "" {
		qb.whereEqual("postal_code", filter.PostalCode)
	}
	if filter.Neighborhood != "" {
		qb.whereEqual("neighborhood", string(filter.Neighborhood))
	}

	query, args := qb.selectPage(addressColumns, c.table(), "created_at DESC, address_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.Address{}
	var total int
	for rows.Next() {
		a, err := scanAddress(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// beyond the last page the window function returns no rows, so the
	// total needs a second query
	if total == 0 && page.Number > 1 {
		countQuery, countArgs := qb.selectCount(c.table())
		if err := c.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return result, total, nil
}
