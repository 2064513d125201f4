package storagedb

// schema is the fixed twelve-table layout, applied idempotently on Open
// as a single multi-statement string.
const schema = `
CREATE TABLE IF NOT EXISTS team (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL UNIQUE,
	seq_num  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS player (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	sex         TEXT NOT NULL,
	team_id     INTEGER REFERENCES team(id),
	state       TEXT NOT NULL,
	seq_num     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS category (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT NOT NULL UNIQUE,
	match_type        TEXT NOT NULL,
	sex               TEXT NOT NULL,
	match_system      TEXT NOT NULL,
	allow_draw        INTEGER NOT NULL DEFAULT 0,
	win_score         INTEGER NOT NULL DEFAULT 2,
	draw_score        INTEGER NOT NULL DEFAULT 1,
	group_config      TEXT NOT NULL DEFAULT '',
	rr_iterations     INTEGER NOT NULL DEFAULT 1,
	state             TEXT NOT NULL,
	seq_num           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS player_category (
	player_id    INTEGER NOT NULL REFERENCES player(id),
	category_id  INTEGER NOT NULL REFERENCES category(id),
	seq_num      INTEGER NOT NULL,
	PRIMARY KEY (player_id, category_id)
);

CREATE TABLE IF NOT EXISTS pairs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id   INTEGER NOT NULL REFERENCES category(id),
	player1_id    INTEGER NOT NULL REFERENCES player(id),
	player2_id    INTEGER REFERENCES player(id),
	group_num     INTEGER,
	initial_rank  INTEGER,
	seq_num       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS match_group (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id  INTEGER NOT NULL REFERENCES category(id),
	round        INTEGER NOT NULL,
	group_num    INTEGER NOT NULL,
	state        TEXT NOT NULL,
	seq_num      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS match (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id        INTEGER NOT NULL REFERENCES match_group(id),
	match_number    INTEGER,
	pair1_id        INTEGER REFERENCES pairs(id),
	pair1_sym       INTEGER,
	pair2_id        INTEGER REFERENCES pairs(id),
	pair2_sym       INTEGER,
	referee_id      INTEGER REFERENCES player(id),
	score_json      TEXT,
	is_walkover     INTEGER NOT NULL DEFAULT 0,
	walkover_winner INTEGER,
	winner_rank     INTEGER,
	loser_rank      INTEGER,
	winner_next     INTEGER,
	winner_slot     INTEGER,
	loser_next      INTEGER,
	loser_slot      INTEGER,
	state           TEXT NOT NULL,
	seq_num         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS ranking (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id   INTEGER NOT NULL REFERENCES category(id),
	round         INTEGER NOT NULL,
	pair_id       INTEGER NOT NULL REFERENCES pairs(id),
	group_num     INTEGER,
	matches_won   INTEGER NOT NULL DEFAULT 0,
	matches_drawn INTEGER NOT NULL DEFAULT 0,
	matches_lost  INTEGER NOT NULL DEFAULT 0,
	games_won     INTEGER NOT NULL DEFAULT 0,
	games_lost    INTEGER NOT NULL DEFAULT 0,
	points_won    INTEGER NOT NULL DEFAULT 0,
	points_lost   INTEGER NOT NULL DEFAULT 0,
	rank          INTEGER,
	seq_num       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS court (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL,
	seq_num  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bracket_vis (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id  INTEGER NOT NULL REFERENCES category(id),
	match_id     INTEGER REFERENCES match(id),
	node_uid     TEXT NOT NULL,
	depth        INTEGER NOT NULL,
	x            REAL NOT NULL,
	y            REAL NOT NULL,
	label        TEXT,
	seq_num      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS config_kv (
	key    TEXT PRIMARY KEY,
	value  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sequence (
	name   TEXT PRIMARY KEY,
	value  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_pairs_category ON pairs(category_id);
CREATE INDEX IF NOT EXISTS idx_match_group_category ON match_group(category_id, round);
CREATE INDEX IF NOT EXISTS idx_match_group_id ON match(group_id);
CREATE INDEX IF NOT EXISTS idx_ranking_category_round ON ranking(category_id, round);
`

// schemaVersion is written into config_kv on first Open and enforced on
// every subsequent Open.
const schemaVersion = "1"
