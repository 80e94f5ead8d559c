package database

import (
	"database/sql"
	"fmt"
	"log"
)

// --- Seed data structs ---
type BitConfigSeed struct {
	WordIndex       int
	BitIndex        uint
	Name            string
	Enabled         bool
	Priority        int
	Message         string
	UseTemplate     bool
	MessageTemplate string
	Color           string
	FontSize        string
	FontFamily      string
	FontWeight      string
	TextShadow      string
	LetterSpacing   string
	Position        string
}

type VideoSeed struct {
	Name            string
	FilePath        string
	DurationSeconds int
	Enabled         bool
	DisplayOrder    int
	Description     string
}

// --- SQL Schema ---
const createBitConfigsSQL = `
CREATE TABLE bit_configs (
    word_index INTEGER NOT NULL,
    bit_index INTEGER NOT NULL CHECK (bit_index BETWEEN 0 AND 15),
    name TEXT NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT 1,
    priority INTEGER NOT NULL DEFAULT 0,
    message TEXT,
    use_template BOOLEAN NOT NULL DEFAULT 0,
    message_template TEXT,
    color TEXT DEFAULT '#ffffff',
    font_size TEXT DEFAULT '48px',
    font_family TEXT DEFAULT 'Arial',
    font_weight TEXT DEFAULT 'bold',
    text_shadow TEXT,
    letter_spacing TEXT,
    position TEXT DEFAULT 'center',
    PRIMARY KEY (word_index, bit_index)
);`

const createVideosSQL = `
CREATE TABLE videos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    duration_seconds INTEGER NOT NULL CHECK (duration_seconds > 0),
    enabled BOOLEAN NOT NULL DEFAULT 1,
    display_order INTEGER NOT NULL DEFAULT 0,
    description TEXT
);`

const createDisplayConfigSQL = `
CREATE TABLE display_config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// --- Default configuration ---
var BIT_CONFIGS = []BitConfigSeed{
	{WordIndex: 0, BitIndex: 0, Name: "Emergencia", Enabled: true, Priority: 100,
		Message: "EMERGENCIA - EVACUAR", Color: "#ff0000", FontSize: "64px", FontWeight: "bold",
		TextShadow: "2px 2px 4px #000000", Position: "center"},
	{WordIndex: 0, BitIndex: 1, Name: "Falha Sistema", Enabled: true, Priority: 90,
		Message: "FALHA NO SISTEMA", Color: "#ff6600", FontSize: "56px", FontWeight: "bold", Position: "center"},
	{WordIndex: 0, BitIndex: 2, Name: "Manutencao", Enabled: true, Priority: 50,
		Message: "EM MANUTENCAO", Color: "#ffff00", FontSize: "48px", Position: "center"},
	{WordIndex: 1, BitIndex: 0, Name: "Nivel Tanque", Enabled: true, Priority: 40,
		UseTemplate: true, MessageTemplate: "NIVEL: {Word[3]/10} m", Color: "#00ccff",
		FontSize: "48px", Position: "center"},
	{WordIndex: 1, BitIndex: 1, Name: "Temperatura", Enabled: true, Priority: 35,
		UseTemplate: true, MessageTemplate: "TEMP: {Int[4]/10} C", Color: "#00ff99",
		FontSize: "48px", Position: "center"},
	{WordIndex: 1, BitIndex: 2, Name: "Vazao", Enabled: true, Priority: 30,
		UseTemplate: true, MessageTemplate: "VAZAO: {Real[10]:1} m3/h", Color: "#66ccff",
		FontSize: "44px", Position: "bottom"},
	{WordIndex: 2, BitIndex: 0, Name: "Bem Vindo", Enabled: true, Priority: 10,
		Message: "BEM-VINDO", Color: "#ffffff", FontSize: "52px", LetterSpacing: "4px", Position: "center"},
	{WordIndex: 2, BitIndex: 1, Name: "Mensagem Teste", Enabled: false, Priority: 1,
		Message: "TESTE", Color: "#999999", Position: "center"},
}

var VIDEOS = []VideoSeed{
	{Name: "Institucional", FilePath: "/videos/institucional.mp4", DurationSeconds: 30,
		Enabled: true, DisplayOrder: 0, Description: "Video institucional da empresa"},
	{Name: "Seguranca", FilePath: "/videos/seguranca.mp4", DurationSeconds: 20,
		Enabled: true, DisplayOrder: 1, Description: "Instrucoes de seguranca"},
	{Name: "Promocional", FilePath: "/videos/promo.mp4", DurationSeconds: 15,
		Enabled: false, DisplayOrder: 2, Description: "Aguardando aprovacao"},
}

var DISPLAY_CONFIG = map[string]string{
	"video_control_word_index": "5",
	"video_control_bit_index":  "3",
}

// CreateAndPopulate creates the database schema and fills it with the default configuration.
func CreateAndPopulate(db *sql.DB) error {
	log.Println("Creating database schema...")
	if _, err := db.Exec(createBitConfigsSQL); err != nil {
		return fmt.Errorf("could not create bit_configs table: %w", err)
	}
	if _, err := db.Exec(createVideosSQL); err != nil {
		return fmt.Errorf("could not create videos table: %w", err)
	}
	if _, err := db.Exec(createDisplayConfigSQL); err != nil {
		return fmt.Errorf("could not create display_config table: %w", err)
	}
	log.Println("Schema created successfully.")

	log.Println("Populating database with default sign configuration...")
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	bitStmt, err := tx.Prepare(`INSERT INTO bit_configs(word_index, bit_index, name, enabled, priority, message, use_template, message_template, color, font_size, font_family, font_weight, text_shadow, letter_spacing, position) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not prepare bit_configs statement: %w", err)
	}
	defer bitStmt.Close()

	videoStmt, err := tx.Prepare(`INSERT INTO videos(name, file_path, duration_seconds, enabled, display_order, description) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not prepare videos statement: %w", err)
	}
	defer videoStmt.Close()

	configStmt, err := tx.Prepare(`INSERT INTO display_config(key, value) VALUES(?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not prepare display_config statement: %w", err)
	}
	defer configStmt.Close()

	bitCount := 0
	for _, bc := range BIT_CONFIGS {
		fontFamily := bc.FontFamily
		if fontFamily == "" {
			fontFamily = "Arial"
		}
		_, err := bitStmt.Exec(bc.WordIndex, bc.BitIndex, bc.Name, bc.Enabled, bc.Priority,
			bc.Message, bc.UseTemplate, bc.MessageTemplate,
			bc.Color, bc.FontSize, fontFamily, bc.FontWeight, bc.TextShadow, bc.LetterSpacing, bc.Position)
		if err != nil {
			log.Printf("WARNING: Failed to insert bit config %s: %v. Skipping.", bc.Name, err)
			continue
		}
		bitCount++
	}

	for _, v := range VIDEOS {
		if _, err := videoStmt.Exec(v.Name, v.FilePath, v.DurationSeconds, v.Enabled, v.DisplayOrder, v.Description); err != nil {
			log.Printf("WARNING: Failed to insert video %s: %v. Skipping.", v.Name, err)
		}
	}

	for key, value := range DISPLAY_CONFIG {
		if _, err := configStmt.Exec(key, value); err != nil {
			log.Printf("WARNING: Failed to insert display_config key %s: %v. Skipping.", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	log.Printf("Database population completed. Inserted %d bit configs.", bitCount)
	return nil
}
