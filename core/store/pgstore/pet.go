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

const petColumns = `pet_id, name, animal, breed, created_at, updated_at`

// petCollection serves the standalone pets resource. Pets living in a
// shop carry a pet_shop_id and are excluded here, so shop inventory can
// only be changed through the shop itself.
type petCollection struct {
	db *csql.DB
}

func (c *petCollection) table() string {
	return c.db.Schema + `."pet"`
}

func scanPet(row scanner, extra ...interface{}) (model.Pet, error) {
	var p model.Pet
	dest := []interface{}{&p.ID, &p.Name, &p.Animal, &p.Breed, &p.CreatedAt, &p.UpdatedAt}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return p, err
}

// insertPet writes a realized pet row, optionally attached to a shop.
func insertPet(ctx context.Context, db *csql.DB, tx *sql.Tx, p model.Pet, shopID *uuid.UUID) error {
	query := `INSERT INTO ` + db.Schema + `."pet" (` + petColumns + `, pet_shop_id) VALUES($1,$2,$3,$4,$5,$6,$7);`
	args := []interface{}{p.ID, p.Name, p.Animal, p.Breed, p.CreatedAt, p.UpdatedAt, shopID}
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = db.ExecContext(ctx, query, args...)
	}
	return err
}

func (c *petCollection) Insert(ctx context.Context, create model.PetCreate) (model.Pet, error) {
	p := model.NewPet(create, time.Now().UTC())
	if err := insertPet(ctx, c.db, nil, p, nil); err != nil {
		return model.Pet{}, mapError(err)
	}
	return p, nil
}

func (c *petCollection) Get(ctx context.Context, id uuid.UUID) (model.Pet, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+petColumns+` FROM `+c.table()+` WHERE pet_id = $1 AND pet_shop_id IS NULL;`, id)
	p, err := scanPet(row)
	if err != nil {
		return model.Pet{}, mapError(err)
	}
	return p, nil
}

func (c *petCollection) Update(ctx context.Context, id uuid.UUID, update model.PetUpdate) (model.Pet, error) {
	var b updateBuilder
	if update.Name != nil {
		b.set("name", *update.Name)
	}
	if update.Animal != nil {
		b.set("animal", *update.Animal)
	}
	if update.Breed != nil {
		b.set("breed", *update.Breed)
	}
	if b.empty() {
		return model.Pet{}, store.ErrNoFields
	}
	query, args := b.build(c.table(), "pet_id", id, time.Now().UTC())
	row := c.db.QueryRowContext(ctx, query+` AND pet_shop_id IS NULL RETURNING `+petColumns+`;`, args...)
	p, err := scanPet(row)
	if err != nil {
		return model.Pet{}, mapError(err)
	}
	return p, nil
}

func (c *petCollection) Delete(ctx context.Context, id uuid.UUID) (model.Pet, error) {
	row := c.db.QueryRowContext(ctx,
		`DELETE FROM `+c.table()+` WHERE pet_id = $1 AND pet_shop_id IS NULL RETURNING `+petColumns+`;`, id)
	p, err := scanPet(row)
	if err != nil {
		return model.Pet{}, mapError(err)
	}
	return p, nil
}

func (c *petCollection) List(ctx context.Context, filter store.PetFilter, page store.Page) ([]model.Pet, int, error) {
	var qb queryBuilder
	qb.whereNull("pet_shop_id")
	if filter.Name != "" {
		qb.whereSubstring("name", filter.Name)
	}
	if filter.Animal != "" {
		qb.whereEqual("animal", filter.Animal)
	}
	if filter.Breed != "" {
		qb.whereEqual("breed", filter.Breed)
	}

	query, args := qb.selectPage(petColumns, c.table(), "created_at DESC, pet_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.Pet{}
	var total int
	for rows.Next() {
		p, err := scanPet(rows, &total)
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
