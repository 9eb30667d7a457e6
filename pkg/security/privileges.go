package security

import (
	"os"
	"os/user"
	"runtime"
)

// IsAdmin проверяет, запущена ли программа с административными правами.
// Unsafe режим выполнения SQL (--unsafe) доступен только администратору.
//
// Unix: effective UID == 0.
// Windows: попытка открыть \\.\PHYSICALDRIVE0, доступный только администратору.
func IsAdmin() bool {
	if runtime.GOOS == "windows" {
		file, err := os.Open("\\\\.\\PHYSICALDRIVE0")
		if err != nil {
			return false
		}
		file.Close()
		return true
	}
	return os.Geteuid() == 0
}

// CurrentUser возвращает имя пользователя ОС для журнала запросов
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if name := os.Getenv("USERNAME"); name != "" {
		return name
	}
	return "unknown"
}
