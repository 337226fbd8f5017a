package storage

const sqliteSchema = `
-- 'sources' tracks where decks are imported from, a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);

CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    source_id INTEGER REFERENCES sources(id) ON DELETE CASCADE
);

-- 'cards' holds flashcards. next_review_date is a calendar day (NULL = never reviewed).
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    deck_id INTEGER NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
    hash TEXT NOT NULL UNIQUE,
    front_korean TEXT NOT NULL,
    front_romanization TEXT NOT NULL DEFAULT '',
    back_english TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    level INTEGER NOT NULL DEFAULT 1,
    repetitions INTEGER NOT NULL DEFAULT 0,
    review_interval INTEGER NOT NULL DEFAULT 0,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    next_review_date DATE,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_next_review ON cards(next_review_date);

-- 'reviews' is the append-only review history of flashcards.
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id INTEGER NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
    review_date DATETIME NOT NULL,
    quality_rating INTEGER NOT NULL CHECK (quality_rating BETWEEN 0 AND 5),
    time_spent REAL,
    was_successful BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_card ON reviews(card_id);

CREATE TABLE IF NOT EXISTS vocabulary_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    korean TEXT NOT NULL,
    romanization TEXT NOT NULL DEFAULT '',
    english TEXT NOT NULL,
    part_of_speech TEXT NOT NULL DEFAULT '',
    example_sentence_korean TEXT NOT NULL DEFAULT '',
    example_sentence_english TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    difficulty_level INTEGER NOT NULL DEFAULT 1 CHECK (difficulty_level BETWEEN 1 AND 5),
    times_practiced INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    review_interval INTEGER NOT NULL DEFAULT 0,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    next_review_date DATETIME,
    created_at DATETIME NOT NULL,
    UNIQUE (korean, english)
);
CREATE INDEX IF NOT EXISTS idx_vocab_category ON vocabulary_items(category);

CREATE TABLE IF NOT EXISTS exercises (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    lesson_title TEXT NOT NULL DEFAULT '',
    exercise_type TEXT NOT NULL,
    question TEXT NOT NULL,
    korean_text TEXT NOT NULL DEFAULT '',
    english_text TEXT NOT NULL DEFAULT '',
    correct_answer TEXT NOT NULL,
    explanation TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1
);

-- 'exercise_srs' is the scheduling shadow of an exercise, created on its first review.
CREATE TABLE IF NOT EXISTS exercise_srs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    exercise_id INTEGER NOT NULL UNIQUE REFERENCES exercises(id) ON DELETE CASCADE,
    times_practiced INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0,
    review_interval INTEGER NOT NULL DEFAULT 1,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    repetitions INTEGER NOT NULL DEFAULT 0,
    next_review_date DATETIME,
    last_reviewed_at DATETIME
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sources (
    id BIGSERIAL PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS decks (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    source_id BIGINT REFERENCES sources(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cards (
    id BIGSERIAL PRIMARY KEY,
    deck_id BIGINT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
    hash TEXT NOT NULL UNIQUE,
    front_korean TEXT NOT NULL,
    front_romanization TEXT NOT NULL DEFAULT '',
    back_english TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    level INTEGER NOT NULL DEFAULT 1,
    repetitions INTEGER NOT NULL DEFAULT 0,
    review_interval INTEGER NOT NULL DEFAULT 0,
    ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
    next_review_date TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cards_next_review ON cards(next_review_date);

CREATE TABLE IF NOT EXISTS reviews (
    id BIGSERIAL PRIMARY KEY,
    card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
    review_date TIMESTAMPTZ NOT NULL,
    quality_rating INTEGER NOT NULL CHECK (quality_rating BETWEEN 0 AND 5),
    time_spent DOUBLE PRECISION,
    was_successful BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_card ON reviews(card_id);

CREATE TABLE IF NOT EXISTS vocabulary_items (
    id BIGSERIAL PRIMARY KEY,
    korean TEXT NOT NULL,
    romanization TEXT NOT NULL DEFAULT '',
    english TEXT NOT NULL,
    part_of_speech TEXT NOT NULL DEFAULT '',
    example_sentence_korean TEXT NOT NULL DEFAULT '',
    example_sentence_english TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    difficulty_level INTEGER NOT NULL DEFAULT 1 CHECK (difficulty_level BETWEEN 1 AND 5),
    times_practiced INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    review_interval INTEGER NOT NULL DEFAULT 0,
    ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
    next_review_date TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (korean, english)
);
CREATE INDEX IF NOT EXISTS idx_vocab_category ON vocabulary_items(category);

CREATE TABLE IF NOT EXISTS exercises (
    id BIGSERIAL PRIMARY KEY,
    lesson_title TEXT NOT NULL DEFAULT '',
    exercise_type TEXT NOT NULL,
    question TEXT NOT NULL,
    korean_text TEXT NOT NULL DEFAULT '',
    english_text TEXT NOT NULL DEFAULT '',
    correct_answer TEXT NOT NULL,
    explanation TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS exercise_srs (
    id BIGSERIAL PRIMARY KEY,
    exercise_id BIGINT NOT NULL UNIQUE REFERENCES exercises(id) ON DELETE CASCADE,
    times_practiced INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0,
    review_interval INTEGER NOT NULL DEFAULT 1,
    ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
    repetitions INTEGER NOT NULL DEFAULT 0,
    next_review_date TIMESTAMPTZ,
    last_reviewed_at TIMESTAMPTZ
);
`
