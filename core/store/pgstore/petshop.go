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

// petShopCollection stores the shop row plus its address and pets. All
// writes run in one transaction so a shop is never visible half-built.
type petShopCollection struct {
	db *csql.DB
}

func (c *petShopCollection) table() string {
	return c.db.Schema + `."pet_shop"`
}

// shopJoin reads shop and address in one go.
func (c *petShopCollection) shopJoin() string {
	return `SELECT p.pet_shop_id, p.store_name, p.created_at, p.updated_at, ` + prefixColumns("a", addressColumns) +
		` FROM ` + c.table() + ` p JOIN ` + c.db.Schema + `."address" a ON a.address_id = p.address_id`
}

func scanPetShop(row scanner, extra ...interface{}) (model.PetShop, error) {
	var s model.PetShop
	var latitude, longitude sql.NullFloat64
	dest := []interface{}{&s.ID, &s.StoreName, &s.CreatedAt, &s.UpdatedAt,
		&s.Address.ID, &s.Address.Street, &s.Address.City, &s.Address.State, &s.Address.PostalCode,
		&latitude, &longitude, &s.Address.Neighborhood, &s.Address.CreatedAt, &s.Address.UpdatedAt}
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
	s.Pets = []model.Pet{}
	return s, nil
}

// loadPets fills in the shop's pets, oldest first so the order matches
// the creation payload.
func (c *petShopCollection) loadPets(ctx context.Context, shopID uuid.UUID) ([]model.Pet, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+petColumns+` FROM `+c.db.Schema+`."pet" WHERE pet_shop_id = $1 ORDER BY created_at ASC, pet_id ASC;`,
		shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pets := []model.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}

func (c *petShopCollection) Insert(ctx context.Context, create model.PetShopCreate) (model.PetShop, error) {
	s := model.NewPetShop(create, time.Now().UTC())

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PetShop{}, err
	}
	if err := insertAddress(ctx, c.db, tx, s.Address); err != nil {
		return model.PetShop{}, mapError(rollback(tx, err))
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+c.table()+` (pet_shop_id, store_name, address_id, created_at, updated_at) VALUES($1,$2,$3,$4,$5);`,
		s.ID, s.StoreName, s.Address.ID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return model.PetShop{}, mapError(rollback(tx, err))
	}
	for _, p := range s.Pets {
		if err := insertPet(ctx, c.db, tx, p, &s.ID); err != nil {
			return model.PetShop{}, mapError(rollback(tx, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return model.PetShop{}, err
	}
	return s, nil
}

func (c *petShopCollection) Get(ctx context.Context, id uuid.UUID) (model.PetShop, error) {
	row := c.db.QueryRowContext(ctx, c.shopJoin()+` WHERE p.pet_shop_id = $1;`, id)
	s, err := scanPetShop(row)
	if err != nil {
		return model.PetShop{}, mapError(err)
	}
	if s.Pets, err = c.loadPets(ctx, s.ID); err != nil {
		return model.PetShop{}, err
	}
	return s, nil
}

func (c *petShopCollection) Update(ctx context.Context, id uuid.UUID, update model.PetShopUpdate) (model.PetShop, error) {
	if update.IsEmpty() {
		return model.PetShop{}, store.ErrNoFields
	}
	now := time.Now().UTC()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PetShop{}, err
	}

	// touch the shop row even when only pets or address change, so
	// updated_at reflects the change
	var b updateBuilder
	if update.StoreName != nil {
		b.set("store_name", *update.StoreName)
	}
	query, args := b.build(c.table(), "pet_shop_id", id, now)
	var addressID uuid.UUID
	if err := tx.QueryRowContext(ctx, query+` RETURNING address_id;`, args...).Scan(&addressID); err != nil {
		return model.PetShop{}, mapError(rollback(tx, err))
	}

	if update.Address != nil {
		var ab updateBuilder
		addressAssignments(&ab, *update.Address)
		if !ab.empty() {
			aq, aargs := ab.build(c.db.Schema+`."address"`, "address_id", addressID, now)
			if _, err := tx.ExecContext(ctx, aq+`;`, aargs...); err != nil {
				return model.PetShop{}, mapError(rollback(tx, err))
			}
		}
	}

	if update.Pets != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+c.db.Schema+`."pet" WHERE pet_shop_id = $1;`, id); err != nil {
			return model.PetShop{}, mapError(rollback(tx, err))
		}
		for _, pc := range *update.Pets {
			if err := insertPet(ctx, c.db, tx, model.NewPet(pc, now), &id); err != nil {
				return model.PetShop{}, mapError(rollback(tx, err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return model.PetShop{}, err
	}
	return c.Get(ctx, id)
}

func (c *petShopCollection) Delete(ctx context.Context, id uuid.UUID) (model.PetShop, error) {
	s, err := c.Get(ctx, id)
	if err != nil {
		return model.PetShop{}, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PetShop{}, err
	}
	// pets go with the shop via ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+c.table()+` WHERE pet_shop_id = $1;`, id); err != nil {
		return model.PetShop{}, mapError(rollback(tx, err))
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+c.db.Schema+`."address" WHERE address_id = $1;`, s.Address.ID); err != nil {
		return model.PetShop{}, mapError(rollback(tx, err))
	}
	if err := tx.Commit(); err != nil {
		return model.PetShop{}, err
	}
	return s, nil
}

func (c *petShopCollection) List(ctx context.Context, filter store.PetShopFilter, page store.Page) ([]model.PetShop, int, error) {
	var qb queryBuilder
	if filter.StoreName != "" {
		qb.whereSubstring("p.store_name", filter.StoreName)
	}
	if filter.City != "" {
		qb.whereEqual("a.city", filter.City)
	}

	from := c.table() + ` p JOIN ` + c.db.Schema + `."address" a ON a.address_id = p.address_id`
	columns := `p.pet_shop_id, p.store_name, p.created_at, p.updated_at, ` + prefixColumns("a", addressColumns)
	query, args := qb.selectPage(columns, from, "p.created_at DESC, p.pet_shop_id DESC", page)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []model.PetShop{}
	var total int
	for rows.Next() {
		s, err := scanPetShop(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if total == 0 && page.Number > 1 {
		countQuery, countArgs := qb.selectCount(from)
		if err := c.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	for i := range result {
		if result[i].Pets, err = c.loadPets(ctx, result[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return result, total, nil
}
