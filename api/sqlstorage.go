package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sqlStorage serves both the sqlite and postgres engines with one set of
// queries: $n placeholders and RETURNING are understood by both. Only the
// schema differs by a couple of column types. Record ids come from a one-row
// counter table shared by every record kind, bumped atomically with
// UPDATE ... RETURNING.
type sqlStorage struct {
	db     *sql.DB
	engine string
}

func newSQLStorage(db *sql.DB, engine string) (*sqlStorage, error) {
	s := &sqlStorage{db: db, engine: engine}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *sqlStorage) createSchema() error {
	blob, timestamp := "BLOB", "DATETIME"
	if s.engine == enginePostgres {
		blob, timestamp = "BYTEA", "TIMESTAMP"
	}
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS record_ids (n INTEGER NOT NULL);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			password_hash %[1]s NOT NULL
		);

		CREATE TABLE IF NOT EXISTS crops (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			planted_date %[2]s NOT NULL,
			expected_harvest_date %[2]s NOT NULL,
			status TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS inventory (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			due_date %[2]s NOT NULL,
			priority TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE
		);
	`, blob, timestamp)
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	// Seed the counter exactly once.
	_, err := s.db.Exec(`INSERT INTO record_ids (n)
						 SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM record_ids)`)
	return err
}

func (s *sqlStorage) nextID() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var id int
	err := s.db.QueryRowContext(ctx, `UPDATE record_ids SET n = n + 1 RETURNING n`).Scan(&id)
	return id, err
}

func (s *sqlStorage) createUser(username string, passwordHash []byte) (*user, error) {
	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO users (id, username, password_hash)
			  VALUES ($1, $2, $3)`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, query, id, username, passwordHash)
	if err != nil {
		return nil, err
	}
	return &user{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (s *sqlStorage) getUserByUsername(username string) (*user, error) {
	query := `SELECT id, username, password_hash
			  FROM users
			  WHERE username = $1
			  ORDER BY id
			  LIMIT 1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, username)
	var u user
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *sqlStorage) getUserByID(id int) (*user, error) {
	query := `SELECT id, username, password_hash
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var u user
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *sqlStorage) createCrop(userID int, draft cropDraft) (*crop, error) {
	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO crops (id, user_id, name, quantity, planted_date, expected_harvest_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, query, id, userID, draft.Name, draft.Quantity,
		draft.PlantedDate, draft.ExpectedHarvestDate, draft.Status)
	if err != nil {
		return nil, err
	}
	return &crop{
		ID:                  id,
		UserID:              userID,
		Name:                draft.Name,
		Quantity:            draft.Quantity,
		PlantedDate:         draft.PlantedDate,
		ExpectedHarvestDate: draft.ExpectedHarvestDate,
		Status:              draft.Status,
	}, nil
}

func (s *sqlStorage) cropsByUser(userID int) ([]crop, error) {
	query := `SELECT id, user_id, name, quantity, planted_date, expected_harvest_date, status
			  FROM crops
			  WHERE user_id = $1
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	crops := []crop{}
	for rows.Next() {
		var c crop
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Quantity,
			&c.PlantedDate, &c.ExpectedHarvestDate, &c.Status)
		if err != nil {
			return nil, err
		}
		crops = append(crops, c)
	}
	return crops, rows.Err()
}

func (s *sqlStorage) createInventoryItem(userID int, draft inventoryDraft) (*inventoryItem, error) {
	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO inventory (id, user_id, name, category, quantity, unit)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, query, id, userID, draft.Name, draft.Category,
		draft.Quantity, draft.Unit)
	if err != nil {
		return nil, err
	}
	return &inventoryItem{
		ID:       id,
		UserID:   userID,
		Name:     draft.Name,
		Category: draft.Category,
		Quantity: draft.Quantity,
		Unit:     draft.Unit,
	}, nil
}

func (s *sqlStorage) inventoryByUser(userID int) ([]inventoryItem, error) {
	query := `SELECT id, user_id, name, category, quantity, unit
			  FROM inventory
			  WHERE user_id = $1
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []inventoryItem{}
	for rows.Next() {
		var item inventoryItem
		err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Category,
			&item.Quantity, &item.Unit)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *sqlStorage) createTask(userID int, draft taskDraft) (*task, error) {
	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO tasks (id, user_id, title, description, due_date, priority, completed)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, query, id, userID, draft.Title, draft.Description,
		draft.DueDate, draft.Priority, draft.Completed)
	if err != nil {
		return nil, err
	}
	return &task{
		ID:          id,
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		Completed:   draft.Completed,
	}, nil
}

func (s *sqlStorage) tasksByUser(userID int) ([]task, error) {
	query := `SELECT id, user_id, title, description, due_date, priority, completed
			  FROM tasks
			  WHERE user_id = $1
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := []task{}
	for rows.Next() {
		var t task
		err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description,
			&t.DueDate, &t.Priority, &t.Completed)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *sqlStorage) completeTask(userID, taskID int) (*task, error) {
	query := `UPDATE tasks SET completed = TRUE
			  WHERE id = $1 AND user_id = $2
			  RETURNING id, user_id, title, description, due_date, priority, completed`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, taskID, userID)
	var t task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description,
		&t.DueDate, &t.Priority, &t.Completed)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Missing and not-owned collapse into the same outcome.
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}
