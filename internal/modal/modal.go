package modal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/TaraJura/trade-bot/internal/domain"
)

// Mode 弹窗状态
type Mode int

const (
	ModeClosed Mode = iota
	ModeAdd
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// FieldID 表单字段
type FieldID int

const (
	FieldSymbol FieldID = iota
	FieldQuantity
	FieldPrice
	FieldStopLoss
	FieldTakeProfit
	fieldCount
)

var fieldLabels = [fieldCount]string{
	FieldSymbol:     "Symbol",
	FieldQuantity:   "Quantity",
	FieldPrice:      "Entry Price",
	FieldStopLoss:   "Stop Loss",
	FieldTakeProfit: "Take Profit",
}

// Label 字段显示名
func (id FieldID) Label() string {
	if id < 0 || id >= fieldCount {
		return ""
	}
	return fieldLabels[id]
}

// Fields 按显示顺序列出全部字段
func Fields() []FieldID {
	return []FieldID{FieldSymbol, FieldQuantity, FieldPrice, FieldStopLoss, FieldTakeProfit}
}

// Field 单个输入框的状态
type Field struct {
	Value   string
	Visible bool
	Enabled bool
}

var (
	ErrNotOpen       = errors.New("position form is not open")
	ErrFieldDisabled = errors.New("field is hidden or disabled")
)

// Modal 新增/编辑持仓弹窗
//
// 状态: closed / add / edit(symbol)。所有进入动作都先做一次完整复位，
// 因此 add -> edit -> close 之后不会残留隐藏或禁用的字段。
type Modal struct {
	mode       Mode
	editSymbol string
	fields     [fieldCount]Field
	focus      FieldID
	symbols    []string
	// session 每次打开加一，用来识别提交结果属于哪一次打开
	session int
}

// New 创建关闭状态的弹窗，symbols 用于新增时循环选择
func New(symbols []string) *Modal {
	m := &Modal{}
	m.SetSymbols(symbols)
	m.reset()
	return m
}

// SetSymbols 更新可选交易对
func (m *Modal) SetSymbols(symbols []string) {
	m.symbols = append([]string(nil), symbols...)
}

func (m *Modal) reset() {
	for i := range m.fields {
		m.fields[i] = Field{Visible: true, Enabled: true}
	}
	m.mode = ModeClosed
	m.editSymbol = ""
	m.focus = FieldSymbol
}

// Mode 当前状态
func (m *Modal) Mode() Mode { return m.mode }

// IsOpen 是否处于 add 或 edit
func (m *Modal) IsOpen() bool { return m.mode != ModeClosed }

// EditSymbol edit 状态下正在编辑的交易对
func (m *Modal) EditSymbol() string { return m.editSymbol }

// Field 读取字段状态
func (m *Modal) Field(id FieldID) Field {
	if id < 0 || id >= fieldCount {
		return Field{}
	}
	return m.fields[id]
}

// Focus 当前焦点字段
func (m *Modal) Focus() FieldID { return m.focus }

// Session 当前这次打开的编号
func (m *Modal) Session() int { return m.session }

// Title 弹窗标题
func (m *Modal) Title() string {
	switch m.mode {
	case ModeAdd:
		return "Add Position"
	case ModeEdit:
		return "Edit Position " + m.editSymbol
	default:
		return ""
	}
}

// OpenAdd closed -> add：清空表单，隐藏止损/止盈
func (m *Modal) OpenAdd() {
	m.reset()
	m.session++
	m.mode = ModeAdd
	if len(m.symbols) > 0 {
		m.fields[FieldSymbol].Value = m.symbols[0]
	}
	m.fields[FieldStopLoss].Visible = false
	m.fields[FieldTakeProfit].Visible = false
	m.focus = FieldSymbol
}

// OpenEdit closed -> edit(symbol)：锁定交易对，隐藏数量/价格，预填止损/止盈
func (m *Modal) OpenEdit(symbol string, stopLoss, takeProfit *float64) {
	m.reset()
	m.session++
	m.mode = ModeEdit
	m.editSymbol = symbol

	m.fields[FieldSymbol].Value = symbol
	m.fields[FieldSymbol].Enabled = false
	m.fields[FieldQuantity].Visible = false
	m.fields[FieldPrice].Visible = false
	m.fields[FieldStopLoss].Value = formatOptional(stopLoss)
	m.fields[FieldTakeProfit].Value = formatOptional(takeProfit)
	m.focus = FieldStopLoss
}

// Close add|edit -> closed：所有字段恢复可见、可编辑
func (m *Modal) Close() {
	m.reset()
}

func (m *Modal) editable(id FieldID) bool {
	if id < 0 || id >= fieldCount {
		return false
	}
	f := m.fields[id]
	return f.Visible && f.Enabled
}

// SetValue 直接设置字段值
func (m *Modal) SetValue(id FieldID, value string) error {
	if !m.IsOpen() {
		return ErrNotOpen
	}
	if !m.editable(id) {
		return fmt.Errorf("%s: %w", id.Label(), ErrFieldDisabled)
	}
	m.fields[id].Value = value
	return nil
}

// editableFields 当前可以获得焦点的字段
func (m *Modal) editableFields() []FieldID {
	var out []FieldID
	for _, id := range Fields() {
		if m.editable(id) {
			out = append(out, id)
		}
	}
	return out
}

// FocusNext 焦点移到下一个可编辑字段（循环）
func (m *Modal) FocusNext() { m.moveFocus(1) }

// FocusPrev 焦点移到上一个可编辑字段（循环）
func (m *Modal) FocusPrev() { m.moveFocus(-1) }

func (m *Modal) moveFocus(delta int) {
	ids := m.editableFields()
	if len(ids) == 0 {
		return
	}
	idx := 0
	for i, id := range ids {
		if id == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(ids)) % len(ids)
	m.focus = ids[idx]
}

// Input 向焦点字段追加输入
func (m *Modal) Input(s string) {
	if !m.IsOpen() || !m.editable(m.focus) {
		return
	}
	if m.focus == FieldSymbol {
		s = strings.ToUpper(s)
	}
	m.fields[m.focus].Value += s
}

// Backspace 删除焦点字段最后一个字符
func (m *Modal) Backspace() {
	if !m.IsOpen() || !m.editable(m.focus) {
		return
	}
	v := []rune(m.fields[m.focus].Value)
	if len(v) == 0 {
		return
	}
	m.fields[m.focus].Value = string(v[:len(v)-1])
}

// CycleSymbol 新增状态下在交易对列表中前后切换
func (m *Modal) CycleSymbol(delta int) {
	if m.mode != ModeAdd || len(m.symbols) == 0 || !m.editable(FieldSymbol) {
		return
	}
	cur := m.fields[FieldSymbol].Value
	idx := -1
	for i, s := range m.symbols {
		if s == cur {
			idx = i
			break
		}
	}
	n := len(m.symbols)
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+delta)%n + n) % n
	}
	m.fields[FieldSymbol].Value = m.symbols[idx]
}

// Submission 提交内容：Create 与 Update 二选一
type Submission struct {
	Mode    Mode
	Symbol  string
	Session int
	Create *domain.CreatePositionRequest
	Update *domain.UpdatePositionRequest
}

// Submit 校验并生成提交内容，弹窗保持打开直到后端确认
func (m *Modal) Submit() (Submission, error) {
	switch m.mode {
	case ModeAdd:
		symbol := strings.ToUpper(strings.TrimSpace(m.fields[FieldSymbol].Value))
		if symbol == "" {
			return Submission{}, errors.New("symbol is required")
		}
		qty, err := parsePositive(FieldQuantity, m.fields[FieldQuantity].Value)
		if err != nil {
			return Submission{}, err
		}
		price, err := parsePositive(FieldPrice, m.fields[FieldPrice].Value)
		if err != nil {
			return Submission{}, err
		}
		return Submission{
			Mode:    ModeAdd,
			Symbol:  symbol,
			Session: m.session,
			Create: &domain.CreatePositionRequest{Symbol: symbol, Quantity: qty, EntryPrice: price},
		}, nil

	case ModeEdit:
		sl, err := parseOptional(FieldStopLoss, m.fields[FieldStopLoss].Value)
		if err != nil {
			return Submission{}, err
		}
		tp, err := parseOptional(FieldTakeProfit, m.fields[FieldTakeProfit].Value)
		if err != nil {
			return Submission{}, err
		}
		return Submission{
			Mode:    ModeEdit,
			Symbol:  m.editSymbol,
			Session: m.session,
			Update: &domain.UpdatePositionRequest{StopLoss: sl, TakeProfit: tp},
		}, nil

	default:
		return Submission{}, ErrNotOpen
	}
}

func parsePositive(id FieldID, raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", id.Label())
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%s must be greater than 0", id.Label())
	}
	f, _ := d.Float64()
	return f, nil
}

// parseOptional 空字符串表示不设置
func parseOptional(id FieldID, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", id.Label())
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%s must not be negative", id.Label())
	}
	f, _ := d.Float64()
	return &f, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).String()
}
