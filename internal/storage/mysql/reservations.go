package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel_booking/internal/domain"
)

func scanReservation(row rowScanner) (domain.Reservation, error) {
	var (
		res             domain.Reservation
		status          string
		owner, currency sql.NullString
	)
	if err := row.Scan(
		&res.ID, &res.Reference, &res.RoomID, &res.GuestName, &res.CheckIn, &res.CheckOut,
		&res.Notes, &owner, &status, &res.Taxes, &res.Discount, &res.Total, &currency,
		&res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return domain.Reservation{}, err
	}
	res.Status = domain.ReservationStatus(status)
	res.OwnerID = ptrNull(owner)
	res.Currency = ptrNull(currency)
	res.CheckIn = domain.DateOf(res.CheckIn)
	res.CheckOut = domain.DateOf(res.CheckOut)
	return res, nil
}

func scanReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	defer rows.Close()
	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func valDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

// dateArg binds a calendar date without any time-zone shift.
func dateArg(t time.Time) string { return t.Format(domain.DateLayout) }

func (r *Repo) GetReservation(ctx context.Context, id int64) (domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, selectReservationSQL, id))
	if err != nil {
		return domain.Reservation{}, mapErr(err)
	}
	return res, nil
}

// ListReservations orders by check-in descending, newest id first on ties.
func (r *Repo) ListReservations(ctx context.Context, q domain.ReservationsQuery) ([]domain.Reservation, error) {
	var (
		conds []string
		args  []any
	)
	if q.OwnerID != nil {
		conds = append(conds, "res.owner_id = ?")
		args = append(args, *q.OwnerID)
	}
	if q.RoomID != nil {
		conds = append(conds, "res.room_id = ?")
		args = append(args, *q.RoomID)
	}
	if q.HotelID != nil {
		conds = append(conds, "r.hotel_id = ?")
		args = append(args, *q.HotelID)
	}
	if !q.IncludeCancelled {
		conds = append(conds, "res.status <> 'cancelled'")
	}
	sqlStr := listReservationsPrefix
	if len(conds) > 0 {
		sqlStr += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	sqlStr += "ORDER BY res.check_in DESC, res.id DESC"

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	return scanReservations(rows)
}

func (r *Repo) SetStatus(ctx context.Context, id int64, st domain.ReservationStatus) error {
	res, err := r.db.ExecContext(ctx, setReservationStatusSQL, string(st), time.Now().UTC(), id)
	if err != nil {
		return mapErr(err)
	}
	return r.affected(ctx, res, "reservations", id)
}

func (r *Repo) WithRoomLock(ctx context.Context, roomID int64, fn func(tx domain.ReservationTx, room domain.Room) error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		room, err := scanRoom(tx.QueryRowContext(ctx, lockRoomSQL, roomID))
		if err != nil {
			return mapErr(err)
		}
		return fn(&reservationTx{tx: tx}, room)
	})
}

type reservationTx struct{ tx *sql.Tx }

func (t *reservationTx) Reservation(ctx context.Context, id int64) (domain.Reservation, error) {
	res, err := scanReservation(t.tx.QueryRowContext(ctx, lockReservationSQL, id))
	if err != nil {
		return domain.Reservation{}, mapErr(err)
	}
	return res, nil
}

func (t *reservationTx) Overlapping(ctx context.Context, roomID int64, in, out time.Time, excludeID int64) ([]domain.Reservation, error) {
	rows, err := t.tx.QueryContext(ctx, overlappingSQL, roomID, dateArg(out), dateArg(in), excludeID)
	if err != nil {
		return nil, err
	}
	return scanReservations(rows)
}

func (t *reservationTx) Insert(ctx context.Context, res domain.Reservation) (int64, error) {
	out, err := t.tx.ExecContext(ctx, insertReservationSQL,
		res.Reference, res.RoomID, res.GuestName, dateArg(res.CheckIn), dateArg(res.CheckOut),
		res.Notes, valStr(res.OwnerID), string(res.Status),
		valDecimal(res.Taxes), valDecimal(res.Discount), valDecimal(res.Total), valStr(res.Currency),
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return out.LastInsertId()
}

func (t *reservationTx) Update(ctx context.Context, res domain.Reservation) error {
	_, err := t.tx.ExecContext(ctx, updateReservationSQL,
		res.RoomID, res.GuestName, dateArg(res.CheckIn), dateArg(res.CheckOut), res.Notes, string(res.Status),
		valDecimal(res.Taxes), valDecimal(res.Discount), valDecimal(res.Total), valStr(res.Currency),
		res.UpdatedAt, res.ID,
	)
	return mapErr(err)
}
