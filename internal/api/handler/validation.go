package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kiflomm/mu-maintainance/internal/model"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
	"github.com/kiflomm/mu-maintainance/pkg/response"
)

// RegisterValidators 向 gin 默认校验器注册业务标签
//
//	complaint_status  pending / in_progress / resolved
//	user_role         任意合法角色
//	staff_role        可由管理员创建的角色（不含 admin）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验器不是 validator/v10")
	}

	if err := v.RegisterValidation("complaint_status", func(fl validator.FieldLevel) bool {
		return model.Status(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("staff_role", func(fl validator.FieldLevel) bool {
		r := model.Role(fl.Field().String())
		return r.Valid() && r != model.RoleAdmin
	})
}

// respondBindError 将绑定/校验错误转为 400，字段级错误放入 details
func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[toSnake(fe.Field())] = fieldMessage(fe)
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", fields)
}

// respondValidation 输出业务层 ValidationError
func respondValidation(c *gin.Context, ve *pkgerrors.ValidationError) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", ve.Fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式无效"
	case "min":
		return "不能小于 " + fe.Param()
	case "max":
		return "不能超过 " + fe.Param()
	case "complaint_status":
		return "状态只能是 pending / in_progress / resolved"
	case "staff_role", "user_role":
		return "角色无效"
	default:
		return "格式无效"
	}
}

// toSnake CampusID → campus_id
func toSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (runes[i-1] < 'A' || runes[i-1] > 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
