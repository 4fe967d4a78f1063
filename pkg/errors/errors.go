package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// IsUniqueViolation 判断是否唯一约束冲突
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// IsForeignKeyViolation 判断是否外键约束冲突（引用的记录不存在）
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// IsCheckViolation 判断是否 CHECK 约束冲突
func IsCheckViolation(err error) bool {
	return pgCode(err) == pgCheckViolation
}

// IsInvalidText 判断是否输入格式非法（如非 UUID 字符串写入 uuid 列）
func IsInvalidText(err error) bool {
	return pgCode(err) == pgInvalidText
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
