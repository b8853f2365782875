package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"FPKProgress/pkg/xerr"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// Struct 校验服务层命令，失败时返回 400 CodeError，消息中带字段名
func Struct(v interface{}) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return xerr.New(xerr.BadRequest, "invalid parameters: "+strings.Join(fields, ", "))
	}
	return xerr.New(xerr.BadRequest, err.Error())
}
