package mysql

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

const insertHotelSQL = `
INSERT INTO hotels (name, city, address, stars, description)
VALUES (?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, city = ?, address = ?, stars = ?, description = ?
WHERE id = ?
`

const selectHotelSQL = `
SELECT id, name, city, address, stars, description
FROM hotels
`

const lockHotelSQL = `SELECT id FROM hotels WHERE id = ? FOR UPDATE`

// Reservations of any status keep their room (and so the hotel) alive.
const countHotelReservationsSQL = `
SELECT COUNT(*)
FROM reservations res
JOIN rooms r ON r.id = res.room_id
WHERE r.hotel_id = ?
`

const deleteHotelRoomsSQL = `DELETE FROM rooms WHERE hotel_id = ?`
const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

// -----------------------------------------------------------------------------
// ROOMS
// -----------------------------------------------------------------------------

const insertRoomSQL = `
INSERT INTO rooms
  (hotel_id, number, room_type, capacity, price_per_night, is_active, image, spaces, description)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET hotel_id = ?, number = ?, room_type = ?, capacity = ?, price_per_night = ?,
    is_active = ?, image = ?, spaces = ?, description = ?
WHERE id = ?
`

const roomColumns = `r.id, r.hotel_id, r.number, r.room_type, r.capacity, r.price_per_night,
  r.is_active, r.image, r.spaces, r.description`

const selectRoomSQL = `SELECT ` + roomColumns + ` FROM rooms r WHERE r.id = ?`

// The row lock on the room is what serializes reservation writers per room.
const lockRoomSQL = `SELECT ` + roomColumns + ` FROM rooms r WHERE r.id = ? FOR UPDATE`

const listRoomsPrefix = `SELECT ` + roomColumns + `
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
`

const countRoomReservationsSQL = `SELECT COUNT(*) FROM reservations WHERE room_id = ?`
const deleteRoomSQL = `DELETE FROM rooms WHERE id = ?`

// -----------------------------------------------------------------------------
// RESERVATIONS
// -----------------------------------------------------------------------------

const reservationColumns = `res.id, res.reference, res.room_id, res.guest_name, res.check_in, res.check_out,
  res.notes, res.owner_id, res.status, res.taxes, res.discount, res.total, res.currency,
  res.created_at, res.updated_at`

const selectReservationSQL = `SELECT ` + reservationColumns + ` FROM reservations res WHERE res.id = ?`

const lockReservationSQL = selectReservationSQL + ` FOR UPDATE`

// Half-open overlap: existing.check_in < new.check_out AND existing.check_out > new.check_in.
const overlappingSQL = `
SELECT ` + reservationColumns + `
FROM reservations res
WHERE res.room_id = ?
  AND res.status <> 'cancelled'
  AND res.check_in < ?
  AND res.check_out > ?
  AND res.id <> ?
ORDER BY res.check_in, res.id
`

const listReservationsPrefix = `SELECT ` + reservationColumns + `
FROM reservations res
JOIN rooms r ON r.id = res.room_id
`

const insertReservationSQL = `
INSERT INTO reservations
  (reference, room_id, guest_name, check_in, check_out, notes, owner_id, status,
   taxes, discount, total, currency, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateReservationSQL = `
UPDATE reservations
SET room_id = ?, guest_name = ?, check_in = ?, check_out = ?, notes = ?, status = ?,
    taxes = ?, discount = ?, total = ?, currency = ?, updated_at = ?
WHERE id = ?
`

const setReservationStatusSQL = `UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`

// -----------------------------------------------------------------------------
// MIGRATIONS
// -----------------------------------------------------------------------------

const createMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version    VARCHAR(128) PRIMARY KEY,
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`
