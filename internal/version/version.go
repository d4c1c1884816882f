// Package version хранит сведения о сборке, которые CI подставляет
// через -ldflags "-X .../internal/version.version=..." и т.д.
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает все три поля сборки разом.
func Info() (v, c, d string) { return version, commit, date }

// GetVersion возвращает семвер релиза либо "dev" для локальной сборки.
func GetVersion() string { return version }

// GetCommit возвращает хэш коммита, из которого собран бинарник.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

// String — строка для лога при старте сервиса и для флага -version.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
