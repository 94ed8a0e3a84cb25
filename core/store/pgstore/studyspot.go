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

// studySpotCollection stores the spot row plus its address, amenities and
// opening hours, each in their own table. Writes run in one transaction;
// reads join all four tables.
type studySpotCollection struct {
	db *csql.DB
}

func (c *studySpotCollection) table() string {
	return c.db.Schema + `."studyspot"`
}

func (c *studySpotCollection) joinFrom() string {
	return c.table() + ` s` +
		` JOIN ` + c.db.Schema + `."address" a ON a.address_id = s.address_id` +
		` JOIN ` + c.db.Schema + `."amenities" m ON m.amenities_id = s.amenities_id` +
		` JOIN ` + c.db.Schema + `."hours" h ON h.hours_id = s.hours_id`
}

func (c *studySpotCollection) joinColumns() string {
	return `s.studyspot_id, s.name, s.created_at, s.updated_at, ` +
		prefixColumns("a", addressColumns) + `, ` +
		prefixColumns("m", amenitiesColumns) + `, ` +
		prefixColumns("h", hoursColumns)
}

func scanStudySpot(row scanner, extra ...interface{}) (model.StudySpot, error) {
	var s model.StudySpot
	var latitude, longitude sql.NullFloat64
	var wifiNetwork, refreshments sql.NullString
	var environment pq.StringArray
	hoursRaw := make([]sql.NullString, 14)

	dest := []interface{}{&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt,
		&s.Address.ID, &s.Address.Street, &s.Address.City, &s.Address.State, &s.Address.PostalCode,
		&latitude, &longitude, &s.Address.Neighborhood, &s.Address.CreatedAt, &s.Address.UpdatedAt,
		&s.Amenity.ID, &s.Amenity.WifiAvailable, &wifiNetwork, &s.Amenity.Outlets,
		&s.Amenity.Seating, &refreshments, &environment, &s.Amenity.CreatedAt, &s.Amenity.UpdatedAt,
		&s.Hours.ID}
	for i := range hoursRaw {
		dest = append(dest, &hoursRaw[i])
	}
	dest = append(dest, &s.Hours.CreatedAt, &s.Hours.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return s, err
	}

	if latitude.Valid {
		s.Address.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		s.Address.Longitude = &longitude.Float64
	}
	if wifiNetwork.Valid {
		s.Amenity.WifiNetwork = &wifiNetwork.String
	}
	if refreshments.Valid {
		s.Amenity.Refreshments = &refreshments.String
	}
	s.Amenity.Environment = make([]model.Environment, len(environment))
	for i, e := range environment {
		s.Amenity.Environment[i] = model.Environment(e)
	}
	hoursFields := []**model.TimeOfDay{
		&s.Hours.MonStart, &s.Hours.MonEnd, &s.Hours.TueStart, &s.Hours.TueEnd,
		&s.Hours.WedStart, &s.Hours.WedEnd, &s.Hours.ThuStart, &s.Hours.ThuEnd,
		&s.Hours.FriStart, &s.Hours.FriEnd, &s.Hours.SatStart, &s.Hours.SatEnd,
		&s.Hours.SunStart, &s.Hours.SunEnd,
	}
	for i, f := range hoursFields {
		t, err := parseTimeOfDayColumn(hoursRaw[i])
		if err != nil {
			return s, err
		}
		*f = t
	}
	return s, nil
}

func (c *studySpotCollection) Insert(ctx context.Context, create model.StudySpotCreate) (model.StudySpot, error) {
	s := model.NewStudySpot(create, time.Now().UTC())

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.StudySpot{}, err
	}
	if err := insertAddress(ctx, c.db, tx, s.Address); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if err := insertAmenities(ctx, c.db, tx, s.Amenity); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if err := insertHours(ctx, c.db, tx, s.Hours); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+c.table()+` (studyspot_id, name, address_id, amenities_id, hours_id, created_at, updated_at) VALUES($1,$2,$3,$4,$5,$6,$7);`,
		s.ID, s.Name, s.Address.ID, s.Amenity.ID, s.Hours.ID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if err := tx.Commit(); err != nil {
		return model.StudySpot{}, err
	}
	return s, nil
}

func (c *studySpotCollection) Get(ctx context.Context, id uuid.UUID) (model.StudySpot, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+c.joinColumns()+` FROM `+c.joinFrom()+` WHERE s.studyspot_id = $1;`, id)
	s, err := scanStudySpot(row)
	if err != nil {
		return model.StudySpot{}, mapError(err)
	}
	return s, nil
}

func (c *studySpotCollection) Update(ctx context.Context, id uuid.UUID, update model.StudySpotUpdate) (model.StudySpot, error) {
	if update.IsEmpty() {
		return model.StudySpot{}, store.ErrNoFields
	}
	now := time.Now().UTC()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.StudySpot{}, err
	}

	// touch the spot row even when only a sub-entity changes
	var b updateBuilder
	if update.Name != nil {
		b.set("name", *update.Name)
	}
	query, args := b.build(c.table(), "studyspot_id", id, now)
	var addressID, amenitiesID, hoursID uuid.UUID
	if err := tx.QueryRowContext(ctx, query+` RETURNING address_id, amenities_id, hours_id;`, args...).
		Scan(&addressID, &amenitiesID, &hoursID); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}

	if update.Address != nil {
		var ab updateBuilder
		addressAssignments(&ab, *update.Address)
		if !ab.empty() {
			aq, aargs := ab.build(c.db.Schema+`."address"`, "address_id", addressID, now)
			if _, err := tx.ExecContext(ctx, aq+`;`, aargs...); err != nil {
				return model.StudySpot{}, mapError(rollback(tx, err))
			}
		}
	}
	if update.Amenity != nil {
		var mb updateBuilder
		amenitiesAssignments(&mb, *update.Amenity)
		if !mb.empty() {
			mq, margs := mb.build(c.db.Schema+`."amenities"`, "amenities_id", amenitiesID, now)
			if _, err := tx.ExecContext(ctx, mq+`;`, margs...); err != nil {
				return model.StudySpot{}, mapError(rollback(tx, err))
			}
		}
	}
	if update.Hours != nil {
		var hb updateBuilder
		hoursAssignments(&hb, *update.Hours)
		if !hb.empty() {
			hq, hargs := hb.build(c.db.Schema+`."hours"`, "hours_id", hoursID, now)
			if _, err := tx.ExecContext(ctx, hq+`;`, hargs...); err != nil {
				return model.StudySpot{}, mapError(rollback(tx, err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return model.StudySpot{}, err
	}
	return c.Get(ctx, id)
}

func (c *studySpotCollection) Delete(ctx context.Context, id uuid.UUID) (model.StudySpot, error) {
	s, err := c.Get(ctx, id)
	if err != nil {
		return model.StudySpot{}, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.StudySpot{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+c.table()+` WHERE studyspot_id = $1;`, id); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+c.db.Schema+`."address" WHERE address_id = $1;`, s.Address.ID); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+c.db.Schema+`."amenities" WHERE amenities_id = $1;`, s.Amenity.ID); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+c.db.Schema+`."hours" WHERE hours_id = $1;`, s.Hours.ID); err != nil {
		return model.StudySpot{}, mapError(rollback(tx, err))
	}
	if err := tx.Commit(); err != nil {
		return model.StudySpot{}, err
	}
	return s, nil
}

func (c *studySpotCollection) List(ctx context.Context, filter store.StudySpotFilter, page store.Page) ([]model.StudySpot, int, error) {
	var qb queryBuilder
	if filter.Name != "" {
		qb.whereSubstring("s.name", filter.Name)
	}
	if filter.City != "" {
		qb.whereEqual("a.city", filter.City)
	}
	if filter.Neighborhood != "" {
		qb.whereEqual("a.neighborhood", string(filter.Neighborhood))
	}
	if filter.Wifi != nil {
		qb.whereEqual("m.wifi_available", *filter.Wifi)
	}
	if filter.Outlets != nil {
		qb.whereEqual("m.outlets", *filter.Outlets)
	}
	if filter.Seating != "" {
		qb.whereEqual("m.seating", string(filter.Seating))
	}
	if filter.Refreshments != "" {
		qb.whereSubstring("m.refreshments", filter.Refreshments)
	}
	if filter.Environment != "" {
		qb.whereContains("m.environment", string(filter.Environment))
	}

	query, args := qb.selectPage(c.joinColumns(), c.joinFrom(), "s.created_at DESC, s.studyspot_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.StudySpot{}
	var total int
	for rows.Next() {
		s, err := scanStudySpot(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if total == 0 && page.Number > 1 {
		countQuery, countArgs := qb.selectCount(c.joinFrom())
		if err := c.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return result, total, nil
}

// SetCoordinates is the write-back of a finished geocode job. It patches
// the spot's address and touches both updated timestamps.
func (c *studySpotCollection) SetCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	now := time.Now().UTC()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var addressID uuid.UUID
	if err := tx.QueryRowContext(ctx,
		`UPDATE `+c.table()+` SET updated_at = $1 WHERE studyspot_id = $2 RETURNING address_id;`,
		now, id).Scan(&addressID); err != nil {
		return mapError(rollback(tx, err))
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE `+c.db.Schema+`."address" SET latitude = $1, longitude = $2, updated_at = $3 WHERE address_id = $4;`,
		latitude, longitude, now, addressID); err != nil {
		return mapError(rollback(tx, err))
	}
	return tx.Commit()
}
