package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT 'Account',
    kind          TEXT NOT NULL,
    balance       TEXT NOT NULL DEFAULT '0',
    currency      TEXT NOT NULL DEFAULT 'CZK',
    institution   TEXT,
    last_synced   TEXT,
    hidden        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
    id            TEXT PRIMARY KEY,
    account_id    TEXT NOT NULL,
    date          TEXT NOT NULL,
    description   TEXT NOT NULL,
    amount        TEXT NOT NULL,
    currency      TEXT NOT NULL DEFAULT 'CZK',
    category      TEXT,
    excluded      INTEGER NOT NULL DEFAULT 0,
    account_kind  TEXT NOT NULL,
    raw_json      TEXT
);

CREATE TABLE IF NOT EXISTS category_rules (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    pattern       TEXT NOT NULL,
    category      TEXT NOT NULL,
    origin        TEXT NOT NULL,
    match_count   INTEGER NOT NULL DEFAULT 0,
    UNIQUE (pattern, origin)
);

CREATE TABLE IF NOT EXISTS recurring_expenses (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL,
    default_amount TEXT NOT NULL DEFAULT '0',
    my_percentage  INTEGER NOT NULL DEFAULT 100,
    match_pattern  TEXT,
    category       TEXT
);

CREATE TABLE IF NOT EXISTS budget_line_items (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    period                 TEXT NOT NULL,
    name                   TEXT NOT NULL,
    amount                 TEXT NOT NULL DEFAULT '0',
    my_percentage          INTEGER NOT NULL DEFAULT 100,
    paid                   INTEGER NOT NULL DEFAULT 0,
    matched_transaction_id TEXT,
    recurring_expense_id   INTEGER REFERENCES recurring_expenses(id)
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at          TEXT NOT NULL,
    completed_at        TEXT,
    status              TEXT NOT NULL DEFAULT 'running',
    error               TEXT,
    accounts_synced     INTEGER NOT NULL DEFAULT 0,
    transactions_synced INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS app_settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_rules_origin ON category_rules(origin, match_count);
CREATE INDEX IF NOT EXISTS idx_line_items_period ON budget_line_items(period);
`
