package database

import (
	"time"
)

func (db *PgBookChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgBookChatRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET username = $2, password_hash = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, username, email, created_at, updated_at",
		params.UserId,
		params.Username,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgBookChatRepository) GetAccountById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgBookChatRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgBookChatRepository) ListAccounts(excludeId int, search string, limit int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id != $1 AND ($2 = '' OR username ILIKE '%' || $2 || '%') "+
			"ORDER BY username LIMIT $3",
		excludeId,
		search,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.Id,
			&u.Username,
			&u.EmailAddress,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (db *PgBookChatRepository) UserExists(id int) bool {
	row := db.conn.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)",
		id,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false
	}

	return exists
}

func (db *PgBookChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (sender_id, receiver_id, content, file_url, file_type, created_at) "+
			"VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6) "+
			"RETURNING id, sender_id, receiver_id, COALESCE(content, ''), COALESCE(file_url, ''), "+
			"COALESCE(file_type, ''), created_at, is_read",
		params.SenderId,
		params.ReceiverId,
		params.Content,
		params.FileUrl,
		params.FileType,
		time.Now().UTC(),
	)

	var m Message
	err := res.Scan(
		&m.Id,
		&m.SenderId,
		&m.ReceiverId,
		&m.Content,
		&m.FileUrl,
		&m.FileType,
		&m.Timestamp,
		&m.IsRead,
	)

	return m, err
}

func (db *PgBookChatRepository) GetMessage(id int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT id, sender_id, receiver_id, COALESCE(content, ''), COALESCE(file_url, ''), "+
			"COALESCE(file_type, ''), created_at, is_read FROM messages WHERE id = $1 LIMIT 1",
		id,
	)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.SenderId,
		&m.ReceiverId,
		&m.Content,
		&m.FileUrl,
		&m.FileType,
		&m.Timestamp,
		&m.IsRead,
	)

	return m, err
}

func (db *PgBookChatRepository) SetMessageRead(id int) error {
	_, err := db.conn.Exec(
		"UPDATE messages SET is_read = TRUE WHERE id = $1",
		id,
	)

	return err
}

func (db *PgBookChatRepository) GetConversation(accountId, peerId int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, sender_id, receiver_id, COALESCE(content, ''), COALESCE(file_url, ''), "+
			"COALESCE(file_type, ''), created_at, is_read FROM messages "+
			"WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) "+
			"ORDER BY created_at ASC",
		accountId,
		peerId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.Id,
			&m.SenderId,
			&m.ReceiverId,
			&m.Content,
			&m.FileUrl,
			&m.FileType,
			&m.Timestamp,
			&m.IsRead,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgBookChatRepository) MarkConversationRead(senderId, receiverId int) error {
	_, err := db.conn.Exec(
		"UPDATE messages SET is_read = TRUE "+
			"WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE",
		senderId,
		receiverId,
	)

	return err
}

func (db *PgBookChatRepository) CountUnread(senderId, receiverId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM messages "+
			"WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE",
		senderId,
		receiverId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

func (db *PgBookChatRepository) GetLastMessage(accountId, peerId int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT id, sender_id, receiver_id, COALESCE(content, ''), COALESCE(file_url, ''), "+
			"COALESCE(file_type, ''), created_at, is_read FROM messages "+
			"WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1) "+
			"ORDER BY created_at DESC LIMIT 1",
		accountId,
		peerId,
	)

	var m Message
	err := row.Scan(
		&m.Id,
		&m.SenderId,
		&m.ReceiverId,
		&m.Content,
		&m.FileUrl,
		&m.FileType,
		&m.Timestamp,
		&m.IsRead,
	)

	return m, err
}

func (db *PgBookChatRepository) SetUserPresence(accountId int, online bool, lastSeen time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO user_status (user_id, is_online, last_seen) VALUES ($1, $2, $3) "+
			"ON CONFLICT (user_id) DO UPDATE SET is_online = $2, last_seen = $3",
		accountId,
		online,
		lastSeen,
	)

	return err
}

func (db *PgBookChatRepository) GetUserPresence(accountId int) (UserStatus, error) {
	row := db.conn.QueryRow(
		"SELECT user_id, is_online, last_seen FROM user_status WHERE user_id = $1 LIMIT 1",
		accountId,
	)

	var status UserStatus
	err := row.Scan(
		&status.UserId,
		&status.IsOnline,
		&status.LastSeen,
	)

	return status, err
}

func (db *PgBookChatRepository) ListBooks(search string, limit int) ([]Book, error) {
	rows, err := db.conn.Query(
		"SELECT id, title, author, COALESCE(description, ''), price_cents, COALESCE(cover_url, ''), created_at "+
			"FROM books WHERE $1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%' "+
			"ORDER BY title LIMIT $2",
		search,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.Id,
			&b.Title,
			&b.Author,
			&b.Description,
			&b.PriceCents,
			&b.CoverUrl,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, rows.Err()
}

func (db *PgBookChatRepository) GetBook(id int) (Book, error) {
	row := db.conn.QueryRow(
		"SELECT id, title, author, COALESCE(description, ''), price_cents, COALESCE(cover_url, ''), created_at "+
			"FROM books WHERE id = $1 LIMIT 1",
		id,
	)

	var b Book
	err := row.Scan(
		&b.Id,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.PriceCents,
		&b.CoverUrl,
		&b.CreatedAt,
	)

	return b, err
}
