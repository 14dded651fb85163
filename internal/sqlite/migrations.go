package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS user_mappings (
		discord_id VARCHAR NOT NULL PRIMARY KEY,
		discord_name VARCHAR NOT NULL,
		calendar_email VARCHAR NOT NULL,
		created_at VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS polls (
		id VARCHAR NOT NULL PRIMARY KEY,
		message_id VARCHAR NOT NULL,
		channel_id VARCHAR NOT NULL,
		created_at VARCHAR NOT NULL,
		closes_at VARCHAR NOT NULL,
		closed INTEGER NOT NULL DEFAULT 0,
		winning_date VARCHAR NULL DEFAULT NULL,
		created_event_id VARCHAR NULL DEFAULT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS poll_options (
		poll_id VARCHAR NOT NULL,
		date VARCHAR NOT NULL,
		vote_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (poll_id, date),
		FOREIGN KEY (poll_id) REFERENCES polls (id)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
