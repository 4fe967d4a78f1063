package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// Register 将自定义校验标签注册到 gin 默认校验器
//
//	hhmm          时刻 HH:MM 或 HH:MM:SS
//	uuid_or_empty 空串或合法 UUID
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator/v10")
	}
	return RegisterOn(v)
}

// RegisterOn 注册到指定校验器实例
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return err
	}
	return v.RegisterValidation("uuid_or_empty", validateUUIDOrEmpty)
}

func validateHHMM(fl validator.FieldLevel) bool {
	return IsClock(fl.Field().String())
}

func validateUUIDOrEmpty(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsClock 判断是否为 HH:MM[:SS]
func IsClock(s string) bool {
	return hhmmPattern.MatchString(s)
}

// NormalizeClock 统一为 HH:MM:SS，便于比较与入库
func NormalizeClock(s string) (string, error) {
	if !IsClock(s) {
		return "", fmt.Errorf("时刻格式无效: %q", s)
	}
	if len(s) == 5 {
		return s + ":00", nil
	}
	return s, nil
}

// ParseDate 解析 YYYY-MM-DD，结果为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
