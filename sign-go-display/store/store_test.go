package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"sign-tools/sign-go-display/config"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE bit_configs (
		word_index INTEGER NOT NULL,
		bit_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		priority INTEGER NOT NULL DEFAULT 0,
		message TEXT,
		use_template BOOLEAN NOT NULL DEFAULT 0,
		message_template TEXT,
		color TEXT, font_size TEXT, font_family TEXT, font_weight TEXT,
		text_shadow TEXT, letter_spacing TEXT, position TEXT,
		PRIMARY KEY (word_index, bit_index)
	);
	CREATE TABLE videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		display_order INTEGER NOT NULL DEFAULT 0,
		description TEXT
	);
	CREATE TABLE display_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func TestLoadEmptyDatabaseUsesDefaults(t *testing.T) {
	db := openTestDB(t)

	cfg, err := Load(db)
	require.NoError(t, err)
	assert.Empty(t, cfg.Bits)
	assert.Empty(t, cfg.Videos)
	assert.Equal(t, config.DefaultControlWord, cfg.ControlBit.WordIndex)
	assert.Equal(t, uint(config.DefaultControlBit), cfg.ControlBit.BitIndex)
}

func TestLoadBitConfigsKeepsInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO bit_configs
		(word_index, bit_index, name, enabled, priority, message, use_template, message_template, color, position)
		VALUES
		(0, 0, 'FIRST',  1, 5, 'FIRST',  0, NULL, '#ff0000', 'center'),
		(0, 1, 'SECOND', 1, 5, 'SECOND', 0, NULL, '#00ff00', 'top'),
		(2, 3, 'LEVEL',  1, 9, '',       1, 'NIVEL: {Int[10]} cm', NULL, NULL)`)
	require.NoError(t, err)

	cfg, err := Load(db)
	require.NoError(t, err)
	require.Len(t, cfg.Bits, 3)
	assert.Equal(t, "FIRST", cfg.Bits[0].Name)
	assert.Equal(t, "SECOND", cfg.Bits[1].Name)
	assert.Equal(t, "LEVEL", cfg.Bits[2].Name)
	assert.Equal(t, "#ff0000", cfg.Bits[0].Color)
	assert.True(t, cfg.Bits[2].UseTemplate)
	assert.Equal(t, "NIVEL: {Int[10]} cm", cfg.Bits[2].MessageTemplate)

	byKey, ok := cfg.BitsByKey[config.BitKey{Word: 2, Bit: 3}]
	require.True(t, ok)
	assert.Same(t, cfg.Bits[2], byKey)
}

func TestLoadVideosOrderedByDisplayOrder(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO videos (name, file_path, duration_seconds, enabled, display_order) VALUES
		('late',     '/videos/late.mp4',     10, 1, 2),
		('early',    '/videos/early.mp4',     5, 1, 0),
		('disabled', '/videos/disabled.mp4',  7, 0, 1)`)
	require.NoError(t, err)

	cfg, err := Load(db)
	require.NoError(t, err)
	require.Len(t, cfg.Videos, 3)
	assert.Equal(t, "early", cfg.Videos[0].Name)
	assert.Equal(t, "disabled", cfg.Videos[1].Name)
	assert.Equal(t, "late", cfg.Videos[2].Name)

	playlist := cfg.EnabledVideos()
	require.Len(t, playlist, 2)
	assert.Equal(t, "early", playlist[0].Name)
	assert.Equal(t, "late", playlist[1].Name)
}

func TestLoadControlBitOverride(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO display_config (key, value) VALUES
		('video_control_word_index', '12'),
		('video_control_bit_index', '7'),
		('unrelated_key', 'ignored')`)
	require.NoError(t, err)

	cfg, err := Load(db)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.ControlBit.WordIndex)
	assert.Equal(t, uint(7), cfg.ControlBit.BitIndex)
}

func TestLoadControlBitGarbageKeepsDefaults(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO display_config (key, value) VALUES
		('video_control_word_index', 'not-a-number'),
		('video_control_bit_index', '99')`)
	require.NoError(t, err)

	cfg, err := Load(db)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultControlWord, cfg.ControlBit.WordIndex)
	assert.Equal(t, uint(config.DefaultControlBit), cfg.ControlBit.BitIndex)
}

func TestLoadRejectsOutOfRangeBitIndex(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO bit_configs (word_index, bit_index, name) VALUES (0, 16, 'BAD')`)
	require.NoError(t, err)

	_, err = Load(db)
	assert.Error(t, err)
}
