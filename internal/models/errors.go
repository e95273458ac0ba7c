package models

import "errors"

// ErrNotFound возвращается репозиториями, когда запись отсутствует
var ErrNotFound = errors.New("not found")
