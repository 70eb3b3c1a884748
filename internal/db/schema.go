package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    first_name TEXT,
    last_name TEXT,
    username TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS enrollments (
    user_id INTEGER PRIMARY KEY REFERENCES users(id),
    current_day INTEGER NOT NULL DEFAULT 1,
    last_delivery_at DATETIME,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    completed_at DATETIME,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS payments (
    payment_id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL,
    amount REAL NOT NULL,
    currency TEXT NOT NULL,
    payment_method TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS content_days (
    day_number INTEGER PRIMARY KEY,
    items TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const defaultSettings = `
INSERT OR IGNORE INTO settings (key, value) VALUES
    ('welcome_message', 'Добро пожаловать в курс «Путь к мечте»!'),
    ('payment_success_message', '✅ Оплата прошла успешно!

🎉 Доступ к курсу «Путь к мечте» активирован!

Первое задание уже ждет вас ниже ⬇️'),
    ('completion_message', '🎉 Поздравляем! Вы прошли все 7 дней курса «Путь к мечте»!

Пусть ваши мечты сбываются!');
`

const migrations = `
ALTER TABLE enrollments ADD COLUMN completed_at DATETIME;
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return err
	}

	_, err = db.Exec(defaultSettings)
	if err != nil {
		return err
	}

	db.Exec(migrations)

	return nil
}
