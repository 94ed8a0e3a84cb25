package pgstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/csql"
	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

const personColumns = `person_id, first_name, last_name, email, created_at, updated_at`

type personCollection struct {
	db *csql.DB
}

func (c *personCollection) table() string {
	return c.db.Schema + `."person"`
}

func scanPerson(row scanner, extra ...interface{}) (model.Person, error) {
	var p model.Person
	dest := []interface{}{&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.CreatedAt, &p.UpdatedAt}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return p, err
}

func (c *personCollection) Insert(ctx context.Context, create model.PersonCreate) (model.Person, error) {
	p := model.NewPerson(create, time.Now().UTC())
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO `+c.table()+` (`+personColumns+`) VALUES($1,$2,$3,$4,$5,$6);`,
		p.ID, p.FirstName, p.LastName, p.Email, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return model.Person{}, mapError(err)
	}
	return p, nil
}

func (c *personCollection) Get(ctx context.Context, id uuid.UUID) (model.Person, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM `+c.table()+` WHERE person_id = $1;`, id)
	p, err := scanPerson(row)
	if err != nil {
		return model.Person{}, mapError(err)
	}
	return p, nil
}

func (c *personCollection) Update(ctx context.Context, id uuid.UUID, update model.PersonUpdate) (model.Person, error) {
	var b updateBuilder
	if update.FirstName != nil {
		b.set("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		b.set("last_name", *update.LastName)
	}
	if update.Email != nil {
		b.set("email", *update.Email)
	}
	if b.empty() {
		return model.Person{}, store.ErrNoFields
	}
	query, args := b.build(c.table(), "person_id", id, time.Now().UTC())
	row := c.db.QueryRowContext(ctx, query+` RETURNING `+personColumns+`;`, args...)
	p, err := scanPerson(row)
	if err != nil {
		return model.Person{}, mapError(err)
	}
	return p, nil
}

func (c *personCollection) Delete(ctx context.Context, id uuid.UUID) (model.Person, error) {
	row := c.db.QueryRowContext(ctx, `DELETE FROM `+c.table()+` WHERE person_id = $1 RETURNING `+personColumns+`;`, id)
	p, err := scanPerson(row)
	if err != nil {
		return model.Person{}, mapError(err)
	}
	return p, nil
}

func (c *personCollection) List(ctx context.Context, filter store.PersonFilter, page store.Page) ([]model.Person, int, error) {
	var qb queryBuilder
	if filter.Email != "" {
		qb.whereEqual("email", filter.Email)
	}
	if filter.LastName != "" {
		qb.whereSubstring("last_name", filter.LastName)
	}

	query, args := qb.selectPage(personColumns, c.table(), "created_at DESC, person_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.Person{}
	var total int
	for rows.Next() {
		p, err := scanPerson(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
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
