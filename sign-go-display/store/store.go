package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"sign-tools/sign-go-display/config"
)

// Load reads the full sign configuration from the database: every bit
// configuration, the video playlist and the control-bit address. The result
// is a complete replacement snapshot; callers swap it in atomically.
func Load(db *sql.DB) (*config.AppConfig, error) {
	cfg := &config.AppConfig{
		BitsByKey: make(map[config.BitKey]*config.BitConfig),
		ControlBit: config.ControlBitAddress{
			WordIndex: config.DefaultControlWord,
			BitIndex:  config.DefaultControlBit,
		},
	}

	rows, err := db.Query(`SELECT word_index, bit_index, name, enabled, priority,
		message, use_template, message_template,
		color, font_size, font_family, font_weight, text_shadow, letter_spacing, position
		FROM bit_configs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bit_configs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		bc := &config.BitConfig{}
		var bit int64
		var message, tmpl, color, fontSize, fontFamily, fontWeight, textShadow, letterSpacing, position sql.NullString
		if err := rows.Scan(&bc.WordIndex, &bit, &bc.Name, &bc.Enabled, &bc.Priority,
			&message, &bc.UseTemplate, &tmpl,
			&color, &fontSize, &fontFamily, &fontWeight, &textShadow, &letterSpacing, &position); err != nil {
			return nil, err
		}
		if bit < 0 || bit > 15 {
			return nil, fmt.Errorf("bit_configs row (word %d): bit_index %d out of range", bc.WordIndex, bit)
		}
		bc.BitIndex = uint(bit)
		bc.Message = message.String
		bc.MessageTemplate = tmpl.String
		bc.Color = color.String
		bc.FontSize = fontSize.String
		bc.FontFamily = fontFamily.String
		bc.FontWeight = fontWeight.String
		bc.TextShadow = textShadow.String
		bc.LetterSpacing = letterSpacing.String
		bc.Position = position.String
		cfg.Bits = append(cfg.Bits, bc)
		cfg.BitsByKey[bc.Key()] = bc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bit_configs: %w", err)
	}
	rows.Close()

	rows, err = db.Query(`SELECT id, name, file_path, duration_seconds, enabled, display_order, description
		FROM videos ORDER BY display_order, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		v := &config.VideoConfig{}
		var description sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &v.FilePath, &v.DurationSeconds, &v.Enabled, &v.DisplayOrder, &description); err != nil {
			return nil, err
		}
		v.Description = description.String
		cfg.Videos = append(cfg.Videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read videos: %w", err)
	}
	rows.Close()

	if err := loadControlBit(db, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadControlBit overrides the compiled-in control-bit address with values
// from display_config, when present. Unparseable values keep the defaults.
func loadControlBit(db *sql.DB, cfg *config.AppConfig) error {
	rows, err := db.Query(`SELECT key, value FROM display_config
		WHERE key IN ('video_control_word_index', 'video_control_bit_index')`)
	if err != nil {
		return fmt.Errorf("failed to query display_config: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			continue
		}
		switch key {
		case "video_control_word_index":
			cfg.ControlBit.WordIndex = n
		case "video_control_bit_index":
			if n <= 15 {
				cfg.ControlBit.BitIndex = uint(n)
			}
		}
	}
	return rows.Err()
}
