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

const hoursColumns = `hours_id, mon_start, mon_end, tue_start, tue_end, wed_start, wed_end, ` +
	`thu_start, thu_end, fri_start, fri_end, sat_start, sat_end, sun_start, sun_end, created_at, updated_at`

type hoursCollection struct {
	db *csql.DB
}

func (c *hoursCollection) table() string {
	return c.db.Schema + `."hours"`
}

// timeOfDayValue renders a nullable opening time for storage.
func timeOfDayValue(t *model.TimeOfDay) interface{} {
	if t == nil {
		return nil
	}
	return t.String()
}

func parseTimeOfDayColumn(s sql.NullString) (*model.TimeOfDay, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := model.ParseTimeOfDay(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanHours(row scanner, extra ...interface{}) (model.Hours, error) {
	var h model.Hours
	raw := make([]sql.NullString, 14)
	dest := []interface{}{&h.ID}
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	dest = append(dest, &h.CreatedAt, &h.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return h, err
	}
	fields := []**model.TimeOfDay{
		&h.MonStart, &h.MonEnd, &h.TueStart, &h.TueEnd, &h.WedStart, &h.WedEnd,
		&h.ThuStart, &h.ThuEnd, &h.FriStart, &h.FriEnd, &h.SatStart, &h.SatEnd,
		&h.SunStart, &h.SunEnd,
	}
	for i, f := range fields {
		t, err := parseTimeOfDayColumn(raw[i])
		if err != nil {
			return h, err
		}
		*f = t
	}
	return h, nil
}

func insertHours(ctx context.Context, db *csql.DB, tx *sql.Tx, h model.Hours) error {
	query := `INSERT INTO ` + db.Schema + `."hours" (` + hoursColumns + `) ` +
		`VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17);`
	args := []interface{}{h.ID,
		timeOfDayValue(h.MonStart), timeOfDayValue(h.MonEnd),
		timeOfDayValue(h.TueStart), timeOfDayValue(h.TueEnd),
		timeOfDayValue(h.WedStart), timeOfDayValue(h.WedEnd),
		timeOfDayValue(h.ThuStart), timeOfDayValue(h.ThuEnd),
		timeOfDayValue(h.FriStart), timeOfDayValue(h.FriEnd),
		timeOfDayValue(h.SatStart), timeOfDayValue(h.SatEnd),
		timeOfDayValue(h.SunStart), timeOfDayValue(h.SunEnd),
		h.CreatedAt, h.UpdatedAt}
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = db.ExecContext(ctx, query, args...)
	}
	return err
}

func (c *hoursCollection) Insert(ctx context.Context, create model.HoursCreate) (model.Hours, error) {
	h := model.NewHours(create, time.Now().UTC())
	if err := insertHours(ctx, c.db, nil, h); err != nil {
		return model.Hours{}, mapError(err)
	}
	return h, nil
}

func (c *hoursCollection) Get(ctx context.Context, id uuid.UUID) (model.Hours, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+hoursColumns+` FROM `+c.table()+` WHERE hours_id = $1;`, id)
	h, err := scanHours(row)
	if err != nil {
		return model.Hours{}, mapError(err)
	}
	return h, nil
}

func hoursAssignments(b *updateBuilder, u model.HoursUpdate) {
	columns := []struct {
		name  string
		value *model.TimeOfDay
	}{
		{"mon_start", u.MonStart}, {"mon_end", u.MonEnd},
		{"tue_start", u.TueStart}, {"tue_end", u.TueEnd},
		{"wed_start", u.WedStart}, {"wed_end", u.WedEnd},
		{"thu_start", u.ThuStart}, {"thu_end", u.ThuEnd},
		{"fri_start", u.FriStart}, {"fri_end", u.FriEnd},
		{"sat_start", u.SatStart}, {"sat_end", u.SatEnd},
		{"sun_start", u.SunStart}, {"sun_end", u.SunEnd},
	}
	for _, col := range columns {
		if col.value != nil {
			b.set(col.name, col.value.String())
		}
	}
}

func (c *hoursCollection) Update(ctx context.Context, id uuid.UUID, update model.HoursUpdate) (model.Hours, error) {
	var b updateBuilder
	hoursAssignments(&b, update)
	if b.empty() {
		return model.Hours{}, store.ErrNoFields
	}
	query, args := b.build(c.table(), "hours_id", id, time.Now().UTC())
	row := c.db.QueryRowContext(ctx, query+` RETURNING `+hoursColumns+`;`, args...)
	h, err := scanHours(row)
	if err != nil {
		return model.Hours{}, mapError(err)
	}
	return h, nil
}

func (c *hoursCollection) Delete(ctx context.Context, id uuid.UUID) (model.Hours, error) {
	row := c.db.QueryRowContext(ctx, `DELETE FROM `+c.table()+` WHERE hours_id = $1 RETURNING `+hoursColumns+`;`, id)
	h, err := scanHours(row)
	if err != nil {
		return model.Hours{}, mapError(err)
	}
	return h, nil
}

func (c *hoursCollection) List(ctx context.Context, filter store.HoursFilter, page store.Page) ([]model.Hours, int, error) {
	var qb queryBuilder
	query, args := qb.selectPage(hoursColumns, c.table(), "created_at DESC, hours_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.Hours{}
	var total int
	for rows.Next() {
		h, err := scanHours(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, h)
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
