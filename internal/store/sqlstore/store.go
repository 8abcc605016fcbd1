package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jfontan/parley/internal/delivery"
	"github.com/jfontan/parley/internal/models"
	"github.com/jfontan/parley/internal/store"
)

type SQLStore struct {
	db         *sql.DB
	driverName string
}

func New(driverName, dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, driverName: driverName}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTables() error {
	// Simplified for brevity, ideally use migrations
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		is_online BOOLEAN DEFAULT FALSE,
		last_seen DATETIME
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		text TEXT NOT NULL,
		status TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (sender_id) REFERENCES users(id),
		FOREIGN KEY (receiver_id) REFERENCES users(id)
	);
	`

	if s.driverName == "postgres" {
		// Adjust for Postgres syntax
		query = strings.ReplaceAll(query, "DATETIME", "TIMESTAMP")
	}

	_, err := s.db.Exec(query)
	return err
}

// Helper to handle placeholders
func (s *SQLStore) rebind(query string) string {
	if s.driverName == "postgres" {
		// Replace ? with $1, $2, etc.
		n := strings.Count(query, "?")
		for i := 1; i <= n; i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	return query
}

func (s *SQLStore) CreateUser(user *models.User) error {
	query := s.rebind("INSERT INTO users (id, username, email, password, is_online, last_seen) VALUES (?, ?, ?, ?, ?, ?)")
	_, err := s.db.Exec(query, user.ID, user.Username, user.Email, user.Password, user.IsOnline, user.LastSeen)
	return err
}

func (s *SQLStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var lastSeen sql.NullTime
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.IsOnline, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.LastSeen = lastSeen.Time
	return &user, nil
}

func (s *SQLStore) GetUserByID(id string) (*models.User, error) {
	query := s.rebind("SELECT id, username, email, password, is_online, last_seen FROM users WHERE id = ?")
	return s.scanUser(s.db.QueryRow(query, id))
}

func (s *SQLStore) GetUserByUsername(username string) (*models.User, error) {
	query := s.rebind("SELECT id, username, email, password, is_online, last_seen FROM users WHERE LOWER(username) = LOWER(?)")
	return s.scanUser(s.db.QueryRow(query, username))
}

func (s *SQLStore) GetUserByEmail(email string) (*models.User, error) {
	query := s.rebind("SELECT id, username, email, password, is_online, last_seen FROM users WHERE email = ?")
	return s.scanUser(s.db.QueryRow(query, strings.ToLower(email)))
}

func (s *SQLStore) SetPresence(id string, online bool, lastSeen time.Time) error {
	query := s.rebind("UPDATE users SET is_online = ?, last_seen = ? WHERE id = ?")
	result, err := s.db.Exec(query, online, lastSeen, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListRoster(exceptID string) ([]models.RosterEntry, error) {
	query := s.rebind("SELECT id, username, is_online, last_seen FROM users WHERE id != ? ORDER BY username ASC")
	rows, err := s.db.Query(query, exceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var entry models.RosterEntry
		var lastSeen sql.NullTime
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.IsOnline, &lastSeen); err != nil {
			return nil, err
		}
		entry.LastSeen = lastSeen.Time
		roster = append(roster, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roster {
		preview, err := s.lastMessage(exceptID, roster[i].ID)
		if err != nil {
			return nil, err
		}
		roster[i].LastMessage = preview
	}
	return roster, nil
}

// lastMessage returns the newest message between the two users, or nil if
// they have never exchanged one.
func (s *SQLStore) lastMessage(userA, userB string) (*models.LastMessage, error) {
	query := s.rebind(`
		SELECT m.text, m.timestamp, u.username
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.timestamp DESC
		LIMIT 1
	`)

	var preview models.LastMessage
	err := s.db.QueryRow(query, userA, userB, userB, userA).Scan(&preview.Text, &preview.Timestamp, &preview.SenderName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &preview, nil
}

// SaveMessage persists a new message row. The timestamp is assigned here, at
// persistence time, so the relative order of concurrent sends is defined by
// when each one reached the store.
func (s *SQLStore) SaveMessage(msg *models.Message) error {
	msg.Timestamp = time.Now().UTC()
	query := s.rebind("INSERT INTO messages (id, sender_id, receiver_id, text, status, timestamp) VALUES (?, ?, ?, ?, ?, ?)")
	_, err := s.db.Exec(query, msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, string(msg.Status), msg.Timestamp)
	return err
}

func (s *SQLStore) GetMessage(id string) (*models.Message, error) {
	query := s.rebind(`
		SELECT m.id, m.sender_id, su.username, m.receiver_id, ru.username, m.text, m.status, m.timestamp
		FROM messages m
		JOIN users su ON m.sender_id = su.id
		JOIN users ru ON m.receiver_id = ru.id
		WHERE m.id = ?
	`)

	var m models.Message
	var status string
	err := s.db.QueryRow(query, id).Scan(&m.ID, &m.SenderID, &m.SenderName, &m.ReceiverID, &m.ReceiverName, &m.Text, &status, &m.Timestamp)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Status = delivery.Status(status)
	return &m, nil
}

func (s *SQLStore) SetMessageStatus(id string, status delivery.Status) error {
	query := s.rebind("UPDATE messages SET status = ? WHERE id = ?")
	result, err := s.db.Exec(query, string(status), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

// FetchConversation promotes before listing, so a receiver's first fetch
// already shows the pending messages as delivered. See the interface contract
// for the read+mutate coupling.
func (s *SQLStore) FetchConversation(currentID, otherID string) ([]models.Message, error) {
	promote := s.rebind("UPDATE messages SET status = ? WHERE sender_id = ? AND receiver_id = ? AND status = ?")
	if _, err := s.db.Exec(promote, string(delivery.StatusDelivered), otherID, currentID, string(delivery.StatusSent)); err != nil {
		return nil, err
	}

	query := s.rebind(`
		SELECT m.id, m.sender_id, su.username, m.receiver_id, ru.username, m.text, m.status, m.timestamp
		FROM messages m
		JOIN users su ON m.sender_id = su.id
		JOIN users ru ON m.receiver_id = ru.id
		WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.timestamp ASC
	`)
	rows, err := s.db.Query(query, currentID, otherID, otherID, currentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var status string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.ReceiverID, &m.ReceiverName, &m.Text, &status, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Status = delivery.Status(status)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLStore) MarkConversationRead(currentID, otherID string) error {
	query := s.rebind("UPDATE messages SET status = ? WHERE sender_id = ? AND receiver_id = ? AND status IN (?, ?)")
	_, err := s.db.Exec(query, string(delivery.StatusRead), otherID, currentID, string(delivery.StatusSent), string(delivery.StatusDelivered))
	return err
}
