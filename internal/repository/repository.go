package repository

import "errors"

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")
