package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// MySQL error numbers we translate into domain errors.
const (
	erDupEntry        = 1062
	erOutOfRange      = 1264
	erDataTooLong     = 1406
	erRowIsReferenced = 1451
	erNoReferencedRow = 1452
	erCheckConstraint = 3819
)

// mapErr converts driver constraint violations into domain errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erDupEntry, erRowIsReferenced:
			return fmt.Errorf("%w: %s", domain.ErrConflict, me.Message)
		case erNoReferencedRow:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, me.Message)
		case erDataTooLong, erOutOfRange, erCheckConstraint:
			return fmt.Errorf("%w: %s", domain.ErrInvalid, me.Message)
		}
	}
	return err
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// inTx runs fn in a transaction, committing only when fn succeeds.
func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// affected reports ErrNotFound when an UPDATE matched no row. MySQL counts
// changed rows, so an unchanged row is told apart by a follow-up lookup.
func (r *Repo) affected(ctx context.Context, res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	return mapErr(err)
}

// ---- hotels ----

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL, h.Name, h.City, h.Address, h.Stars, h.Description)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	res, err := r.db.ExecContext(ctx, updateHotelSQL, h.Name, h.City, h.Address, h.Stars, h.Description, h.ID)
	if err != nil {
		return mapErr(err)
	}
	return r.affected(ctx, res, "hotels", h.ID)
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var got int64
		if err := tx.QueryRowContext(ctx, lockHotelSQL, id).Scan(&got); err != nil {
			return mapErr(err)
		}
		var n int
		if err := tx.QueryRowContext(ctx, countHotelReservationsSQL, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: hotel %d has %d reservations", domain.ErrConflict, id, n)
		}
		if _, err := tx.ExecContext(ctx, deleteHotelRoomsSQL, id); err != nil {
			return mapErr(err)
		}
		_, err := tx.ExecContext(ctx, deleteHotelSQL, id)
		return mapErr(err)
	})
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var h domain.Hotel
	err := r.db.QueryRowContext(ctx, selectHotelSQL+" WHERE id = ?", id).
		Scan(&h.ID, &h.Name, &h.City, &h.Address, &h.Stars, &h.Description)
	if err != nil {
		return domain.Hotel{}, mapErr(err)
	}
	return h, nil
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, selectHotelSQL+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.Address, &h.Stars, &h.Description); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ---- rooms ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (domain.Room, error) {
	var (
		rm                  domain.Room
		rt                  string
		image, spaces, desc sql.NullString
	)
	if err := row.Scan(
		&rm.ID, &rm.HotelID, &rm.Number, &rt, &rm.Capacity, &rm.PricePerNight,
		&rm.Active, &image, &spaces, &desc,
	); err != nil {
		return domain.Room{}, err
	}
	rm.Type = domain.RoomType(rt)
	rm.Image = ptrNull(image)
	rm.Spaces = ptrNull(spaces)
	rm.Description = ptrNull(desc)
	return rm, nil
}

func (r *Repo) CreateRoom(ctx context.Context, rm domain.Room) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		rm.HotelID, rm.Number, string(rm.Type), rm.Capacity, rm.PricePerNight,
		rm.Active, valStr(rm.Image), valStr(rm.Spaces), valStr(rm.Description),
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *Repo) UpdateRoom(ctx context.Context, rm domain.Room) error {
	res, err := r.db.ExecContext(ctx, updateRoomSQL,
		rm.HotelID, rm.Number, string(rm.Type), rm.Capacity, rm.PricePerNight,
		rm.Active, valStr(rm.Image), valStr(rm.Spaces), valStr(rm.Description),
		rm.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	return r.affected(ctx, res, "rooms", rm.ID)
}

// DeleteRoom locks the room row first, the same lock reservation writers take,
// so a booking cannot slip in between the count and the delete.
func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := scanRoom(tx.QueryRowContext(ctx, lockRoomSQL, id)); err != nil {
			return mapErr(err)
		}
		var n int
		if err := tx.QueryRowContext(ctx, countRoomReservationsSQL, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: room %d has %d reservations", domain.ErrConflict, id, n)
		}
		_, err := tx.ExecContext(ctx, deleteRoomSQL, id)
		return mapErr(err)
	})
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, selectRoomSQL, id))
	if err != nil {
		return domain.Room{}, mapErr(err)
	}
	return rm, nil
}

func (r *Repo) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	var (
		conds []string
		args  []any
	)
	if q.HotelID != nil {
		conds = append(conds, "r.hotel_id = ?")
		args = append(args, *q.HotelID)
	}
	if q.Type != nil {
		conds = append(conds, "r.room_type = ?")
		args = append(args, string(*q.Type))
	}
	if q.ActiveOnly {
		conds = append(conds, "r.is_active = TRUE")
	}
	sqlStr := listRoomsPrefix
	if len(conds) > 0 {
		sqlStr += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	if q.OrderByID {
		sqlStr += "ORDER BY r.id"
	} else {
		sqlStr += "ORDER BY h.name, r.number, r.id"
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}
