package db

const schema = `
CREATE TABLE IF NOT EXISTS planning_sessions (
    id          BIGINT PRIMARY KEY,
    version     INTEGER     NOT NULL,
    phase       TEXT        NOT NULL,
    state       JSONB       NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS planning_sessions_updated_at_idx ON planning_sessions (updated_at DESC);
`
