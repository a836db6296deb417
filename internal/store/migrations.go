package store

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	year INTEGER NOT NULL,
	release_date TIMESTAMP,
	plot TEXT NOT NULL DEFAULT '',
	budget INTEGER NOT NULL DEFAULT 0,
	boxoffice INTEGER NOT NULL DEFAULT 0,
	rating REAL NOT NULL DEFAULT 0,
	runtime INTEGER NOT NULL DEFAULT 0,
	votes INTEGER NOT NULL DEFAULT 0,
	poster_url TEXT NOT NULL DEFAULT '',
	rating_label TEXT NOT NULL DEFAULT 'Not Rated',
	trailer_link TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_movies_release_date ON movies(release_date);

CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	birth_date TEXT NOT NULL DEFAULT '',
	password TEXT NOT NULL,
	is_editor INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
	username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
	rating REAL NOT NULL DEFAULT 0,
	content TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	UNIQUE(movie_id, username)
);

CREATE TABLE IF NOT EXISTS watchlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
	movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
	added_at TIMESTAMP NOT NULL,
	UNIQUE(username, movie_id)
);

CREATE TABLE IF NOT EXISTS genres (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS movie_genres (
	movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
	genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
	PRIMARY KEY (movie_id, genre_id)
);

CREATE TABLE IF NOT EXISTS movie_awards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
	award_name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'Nominated'
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
