package main

import (
	"path/filepath"
	"testing"
)

// TestRun_InvalidConfigReturnsExitCode проверяет, что ошибка старта
// возвращается кодом завершения, а не завершает процесс внутри run.
func TestRun_InvalidConfigReturnsExitCode(t *testing.T) {
	t.Setenv("MS_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("MS_DB_HOST", "")
	t.Setenv("MS_DB_NAME", "")

	if code := run(); code != 1 {
		t.Errorf("run() = %d, ожидался код 1", code)
	}
}
