package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/kiflomm/mu-maintainance/internal/model"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
)

// ── 投诉单字段约束 ──

const (
	MinDescriptionLength = 10
	MaxContactNameLength = 255
	MaxContactEmailLen   = 255
	MaxContactPhoneLen   = 20
)

// CreateInput 创建投诉单所需字段（已由传输层解析）
type CreateInput struct {
	CampusID     int64
	CategoryID   int64
	Description  string
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
}

// InsertFunc 持久化回调；工单号唯一索引冲突时须返回 pkgerrors.ErrConflict
type InsertFunc func(ctx context.Context, c *model.Complaint) error

// Engine 投诉单生命周期：字段约束、工单号签发、状态流转、指派
type Engine struct {
	tickets     *TicketGenerator
	maxAttempts int
	strict      bool
	validate    *validator.Validate
	now         func() time.Time
}

// NewEngine 创建生命周期引擎
// strict 为 true 时按流转表限制状态跳转
func NewEngine(tickets *TicketGenerator, maxAttempts int, strict bool) *Engine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Engine{
		tickets:     tickets,
		maxAttempts: maxAttempts,
		strict:      strict,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// Tickets 工单号生成器
func (e *Engine) Tickets() *TicketGenerator {
	return e.tickets
}

// ValidateCreate 校验创建字段（不含外键存在性，由调用方查库）
// 联系方式先去除首尾空白，空串视为未填写
func (e *Engine) ValidateCreate(in *CreateInput) *pkgerrors.ValidationError {
	ve := &pkgerrors.ValidationError{}

	in.ContactName = blankToNil(in.ContactName)
	in.ContactEmail = blankToNil(in.ContactEmail)
	in.ContactPhone = blankToNil(in.ContactPhone)

	if in.CampusID <= 0 {
		ve.Add("campus_id", "校区不能为空")
	}
	if in.CategoryID <= 0 {
		ve.Add("category_id", "分类不能为空")
	}

	desc := strings.TrimSpace(in.Description)
	switch {
	case desc == "":
		ve.Add("description", "投诉描述不能为空")
	case utf8.RuneCountInString(desc) < MinDescriptionLength:
		ve.Add("description", fmt.Sprintf("投诉描述至少需要 %d 个字符", MinDescriptionLength))
	}

	if in.ContactName != nil && utf8.RuneCountInString(*in.ContactName) > MaxContactNameLength {
		ve.Add("contact_name", fmt.Sprintf("联系人姓名不能超过 %d 个字符", MaxContactNameLength))
	}
	if in.ContactEmail != nil {
		if len(*in.ContactEmail) > MaxContactEmailLen {
			ve.Add("contact_email", fmt.Sprintf("邮箱不能超过 %d 个字符", MaxContactEmailLen))
		} else if err := e.validate.Var(*in.ContactEmail, "email"); err != nil {
			ve.Add("contact_email", "邮箱格式不正确")
		}
	}
	if in.ContactPhone != nil && utf8.RuneCountInString(*in.ContactPhone) > MaxContactPhoneLen {
		ve.Add("contact_phone", fmt.Sprintf("联系电话不能超过 %d 个字符", MaxContactPhoneLen))
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// NewComplaint 根据已校验的输入构造待签发的投诉单（status = pending）
func (e *Engine) NewComplaint(in *CreateInput) *model.Complaint {
	now := e.now()
	return &model.Complaint{
		CampusID:     in.CampusID,
		CategoryID:   in.CategoryID,
		Description:  strings.TrimSpace(in.Description),
		ContactName:  blankToNil(in.ContactName),
		ContactEmail: blankToNil(in.ContactEmail),
		ContactPhone: blankToNil(in.ContactPhone),
		Status:       model.StatusPending,
		Timestamps:   model.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
}

// Issue 签发工单号并持久化
// 工单号仅在此处赋值一次；冲突时换号重试，超过上限返回 ErrGenerationExhausted
func (e *Engine) Issue(ctx context.Context, c *model.Complaint, insert InsertFunc) (int, error) {
	collisions := 0
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		code, err := e.tickets.Generate()
		if err != nil {
			return collisions, fmt.Errorf("生成工单号失败: %w", err)
		}
		c.TicketCode = code

		err = insert(ctx, c)
		if err == nil {
			return collisions, nil
		}
		if !errors.Is(err, pkgerrors.ErrConflict) {
			c.TicketCode = ""
			return collisions, err
		}
		collisions++
	}
	c.TicketCode = ""
	return collisions, pkgerrors.ErrGenerationExhausted
}

// ── 状态流转 ──

// transitions 严格模式下允许的流转
var transitions = map[model.Status][]model.Status{
	model.StatusPending:    {model.StatusInProgress, model.StatusResolved},
	model.StatusInProgress: {model.StatusResolved},
}

// CanTransition 判断 from → to 是否允许
// 非严格模式下任意合法状态之间均可跳转
func (e *Engine) CanTransition(from, to model.Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to || !e.strict {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition 修改状态并刷新 updated_at；返回状态是否实际发生变化
func (e *Engine) Transition(c *model.Complaint, to model.Status) (bool, error) {
	if !to.Valid() {
		return false, pkgerrors.NewValidationError("status", "状态值无效，可选: pending / in_progress / resolved")
	}
	if !e.CanTransition(c.Status, to) {
		return false, pkgerrors.NewValidationError("status",
			fmt.Sprintf("不允许从 %s 变更为 %s", c.Status, to))
	}
	if c.Status == to {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = e.now()
	return true, nil
}

// Assign 指派维修人员（nil 表示取消指派），不改变状态
func (e *Engine) Assign(c *model.Complaint, workerID *int64) {
	c.WorkerID = workerID
	c.UpdatedAt = e.now()
}

// Touch 刷新 updated_at
func (e *Engine) Touch(c *model.Complaint) {
	c.UpdatedAt = e.now()
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
