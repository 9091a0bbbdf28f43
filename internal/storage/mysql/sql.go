package mysql

// schemaStatements create the tables on an empty database. They are
// idempotent and run in order on every start.
var schemaStatements = []string{
	`
CREATE TABLE IF NOT EXISTS hotels (
  id          BIGINT       NOT NULL AUTO_INCREMENT,
  name        VARCHAR(255) NOT NULL,
  location    VARCHAR(255) NOT NULL,
  description TEXT         NOT NULL,
  rating      DOUBLE       NOT NULL DEFAULT 0,
  price       INT          NOT NULL DEFAULT 0,
  image       VARCHAR(1024) NOT NULL,
  amenities   JSON         NOT NULL,
  created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  CONSTRAINT chk_hotels_rating CHECK (rating >= 0 AND rating <= 5)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`
CREATE TABLE IF NOT EXISTS rooms (
  id        BIGINT        NOT NULL AUTO_INCREMENT,
  hotel_id  BIGINT        NOT NULL,
  type      VARCHAR(255)  NOT NULL,
  price     INT           NOT NULL,
  capacity  INT           NOT NULL,
  amenities JSON          NOT NULL,
  image     VARCHAR(1024) NOT NULL,
  PRIMARY KEY (id),
  KEY idx_rooms_hotel (hotel_id),
  CONSTRAINT fk_rooms_hotel FOREIGN KEY (hotel_id) REFERENCES hotels (id) ON DELETE CASCADE,
  CONSTRAINT chk_rooms_capacity CHECK (capacity >= 1)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`
CREATE TABLE IF NOT EXISTS users (
  id            BIGINT       NOT NULL AUTO_INCREMENT,
  email         VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  first_name    VARCHAR(255) NOT NULL DEFAULT '',
  last_name     VARCHAR(255) NOT NULL DEFAULT '',
  role          ENUM('user','admin') NOT NULL DEFAULT 'user',
  created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`
CREATE TABLE IF NOT EXISTS bookings (
  id          VARCHAR(12)  NOT NULL,
  user_id     BIGINT       NOT NULL,
  hotel_id    BIGINT       NOT NULL,
  room_id     BIGINT       NOT NULL,
  first_name  VARCHAR(255) NOT NULL,
  last_name   VARCHAR(255) NOT NULL,
  email       VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
  phone       VARCHAR(64)  NOT NULL,
  check_in    DATE         NOT NULL,
  check_out   DATE         NOT NULL,
  status      VARCHAR(32)  NOT NULL DEFAULT 'Confirmed',
  total_price INT          NOT NULL,
  created_at  DATETIME(3)  NOT NULL,
  PRIMARY KEY (id),
  KEY idx_bookings_email (email),
  CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
  CONSTRAINT fk_bookings_hotel FOREIGN KEY (hotel_id) REFERENCES hotels (id) ON DELETE RESTRICT,
  CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// -----------------------------------------------------------------------------
// HOTELS & ROOMS
// -----------------------------------------------------------------------------

const hotelColumns = `id, name, location, description, rating, price, image, amenities`

const roomColumns = `id, hotel_id, type, price, capacity, amenities, image`

// The location match is a case-sensitive substring; an empty needle matches all.
const listHotelsSQL = `
SELECT ` + hotelColumns + `
FROM hotels
WHERE INSTR(location COLLATE utf8mb4_bin, ?) > 0
ORDER BY id
`

const listRoomsForHotelsSQL = `
SELECT r.id, r.hotel_id, r.type, r.price, r.capacity, r.amenities, r.image
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE INSTR(h.location COLLATE utf8mb4_bin, ?) > 0
  AND r.capacity >= ?
ORDER BY r.hotel_id, r.id
`

const getHotelSQL = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = ?`

const listRoomsByHotelSQL = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? ORDER BY id`

const getRoomSQL = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

const countHotelsSQL = `SELECT COUNT(*) FROM hotels`

// NULLIF lets callers pass id 0 for an auto-increment id or a fixed id
// (the sample catalog keeps its ids).
const insertHotelSQL = `
INSERT INTO hotels (id, name, location, description, rating, price, image, amenities)
VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, location = ?, description = ?, rating = ?, price = ?, image = ?, amenities = ?
WHERE id = ?
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const insertRoomSQL = `
INSERT INTO rooms (id, hotel_id, type, price, capacity, amenities, image)
VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET type = ?, price = ?, capacity = ?, amenities = ?, image = ?
WHERE id = ?
`

const deleteRoomSQL = `DELETE FROM rooms WHERE id = ?`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const userColumns = `id, email, password_hash, first_name, last_name, role, created_at`

const insertUserSQL = `
INSERT INTO users (email, password_hash, first_name, last_name, role)
VALUES (?, ?, ?, ?, ?)
`

const getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

const getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (id, user_id, hotel_id, room_id, first_name, last_name, email, phone,
   check_in, check_out, status, total_price, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const listBookingsByEmailSQL = `
SELECT b.id, h.name, h.location, b.check_in, b.check_out, r.type, b.total_price, b.status, h.image
FROM bookings b
JOIN hotels h ON h.id = b.hotel_id
JOIN rooms r  ON r.id = b.room_id
WHERE b.email = ?
ORDER BY b.created_at DESC, b.id DESC
`
