package mysql

// `key` is reserved; keep it quoted everywhere.
const selectContentSQL = "SELECT `key`, value FROM site_content"

const upsertContentSQL = "INSERT INTO site_content (`key`, value)\nVALUES (?, ?)\n" +
	"ON DUPLICATE KEY UPDATE\n" +
	"  value      = VALUES(value),\n" +
	"  updated_at = CURRENT_TIMESTAMP"

const insertBookingSQL = `
INSERT INTO bookings
  (name, phone, email, date, plan, resort_name, duration, room_type, price, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectAdminByEmailSQL = `
SELECT id, email, password_hash
FROM admin_users
WHERE email = ?
LIMIT 1
`

const upsertAdminSQL = `
INSERT INTO admin_users (email, password_hash)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  password_hash = VALUES(password_hash)
`
