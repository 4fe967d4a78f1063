package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Error("包装后的 23505 应识别为唯一约束冲突")
	}
	if IsForeignKeyViolation(wrapped) {
		t.Error("23505 不应识别为外键冲突")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 应识别为外键冲突")
	}
	if !IsCheckViolation(&pgconn.PgError{Code: "23514"}) {
		t.Error("23514 应识别为 CHECK 冲突")
	}
	if !IsInvalidText(fmt.Errorf("select: %w", &pgconn.PgError{Code: "22P02"})) {
		t.Error("22P02 应识别为输入格式非法")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Error("普通错误不应被识别")
	}
}
