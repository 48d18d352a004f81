// Package migration holds the database schema.
package migration

// Create builds an empty database. Listen ids are derived from the listen's
// contents so the same play imported twice maps to one row.
const Create = `
CREATE TABLE User (
  name TEXT PRIMARY KEY,
  session_key TEXT,
  last_updated DATETIME
);

CREATE TABLE Listen (
  id TEXT PRIMARY KEY,
  user TEXT NOT NULL,
  ts INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  track TEXT NOT NULL,
  artist TEXT NOT NULL,
  album TEXT NOT NULL,
  track_uri TEXT NOT NULL DEFAULT '',
  platform TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  skipped INTEGER NOT NULL DEFAULT 0,
  shuffled INTEGER NOT NULL DEFAULT 0,
  reason_start TEXT NOT NULL DEFAULT '',
  reason_end TEXT NOT NULL DEFAULT '',
  kind TEXT NOT NULL DEFAULT 'music',
  source TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (user) REFERENCES User(name)
);

CREATE INDEX ListenUserTs ON Listen (user, ts);

CREATE TABLE Report (
  user TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  run_day INTEGER NOT NULL,
  types TEXT NOT NULL,
  params TEXT,
  sent DATETIME,
  FOREIGN KEY (user) REFERENCES User(name),
  PRIMARY KEY (user, name, email)
);
`

// Column is a column added after the initial schema. Databases created by an
// older Create get it through ALTER TABLE.
type Column struct {
	Table   string
	Name    string
	TypeDef string
}

// Columns lists late-added columns in the order they were introduced.
var Columns = []Column{
	{Table: "Report", Name: "params", TypeDef: "TEXT"},
	{Table: "Listen", Name: "kind", TypeDef: "TEXT NOT NULL DEFAULT 'music'"},
	{Table: "Listen", Name: "source", TypeDef: "TEXT NOT NULL DEFAULT ''"},
}
