// Package constants содержит общие константы CLI
package constants

// Значения флага --test
const (
	TestModeYes = "Y" // dry-run: только логирование, без изменений
	TestModeNo  = "N" // live: изменения применяются
)

// DefaultChatsTestMode - режим по умолчанию для команды chats (live)
const DefaultChatsTestMode = TestModeNo

// DefaultOrphansTestMode - режим по умолчанию для команды orphans (dry-run)
const DefaultOrphansTestMode = TestModeYes
