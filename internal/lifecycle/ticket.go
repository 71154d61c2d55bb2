package lifecycle

import (
	"crypto/rand"
	"io"
	"math/big"
	"regexp"
	"strings"
)

// TicketSuffixLength 工单号随机部分长度
const TicketSuffixLength = 8

const ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TicketGenerator 生成对外公开的工单号：前缀 + 8 位大写字母数字
// 例：COMP-7QK2M9XA
type TicketGenerator struct {
	prefix  string
	pattern *regexp.Regexp
	rand    io.Reader
}

// NewTicketGenerator 创建工单号生成器
func NewTicketGenerator(prefix string) *TicketGenerator {
	return &TicketGenerator{
		prefix:  prefix,
		pattern: regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "[A-Z0-9]{8}$"),
		rand:    rand.Reader,
	}
}

// Generate 生成一个新工单号
// 唯一性由数据库唯一索引保证，这里只负责随机性
func (g *TicketGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(ticketAlphabet)))
	buf := make([]byte, TicketSuffixLength)
	for i := range buf {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", err
		}
		buf[i] = ticketAlphabet[n.Int64()]
	}
	return g.prefix + string(buf), nil
}

// Valid 是否符合工单号格式
func (g *TicketGenerator) Valid(code string) bool {
	return g.pattern.MatchString(code)
}

// NormalizeTicketCode 规范化用户输入的工单号（去空白、转大写）
func NormalizeTicketCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
