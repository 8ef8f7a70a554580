package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func assertAllFieldsReset(t *testing.T, m *Modal) {
	t.Helper()
	for _, id := range Fields() {
		f := m.Field(id)
		assert.True(t, f.Visible, "%s should be visible", id.Label())
		assert.True(t, f.Enabled, "%s should be enabled", id.Label())
	}
}

func TestOpenAdd(t *testing.T) {
	m := New([]string{"BTCUSDT", "ETHUSDT"})
	m.OpenAdd()

	assert.Equal(t, ModeAdd, m.Mode())
	assert.Equal(t, "BTCUSDT", m.Field(FieldSymbol).Value)
	assert.True(t, m.Field(FieldSymbol).Enabled)
	assert.True(t, m.Field(FieldQuantity).Visible)
	assert.True(t, m.Field(FieldPrice).Visible)
	assert.False(t, m.Field(FieldStopLoss).Visible)
	assert.False(t, m.Field(FieldTakeProfit).Visible)
}

func TestOpenEdit(t *testing.T) {
	m := New(nil)
	m.OpenEdit("ETHUSDT", ptr(2940), nil)

	assert.Equal(t, ModeEdit, m.Mode())
	assert.Equal(t, "ETHUSDT", m.EditSymbol())
	assert.Equal(t, "ETHUSDT", m.Field(FieldSymbol).Value)
	assert.False(t, m.Field(FieldSymbol).Enabled)
	assert.False(t, m.Field(FieldQuantity).Visible)
	assert.False(t, m.Field(FieldPrice).Visible)
	assert.True(t, m.Field(FieldStopLoss).Visible)
	assert.Equal(t, "2940", m.Field(FieldStopLoss).Value)
	assert.Equal(t, "", m.Field(FieldTakeProfit).Value)
	assert.Equal(t, FieldStopLoss, m.Focus())

	assert.ErrorIs(t, m.SetValue(FieldSymbol, "BTCUSDT"), ErrFieldDisabled)
	assert.ErrorIs(t, m.SetValue(FieldQuantity, "1"), ErrFieldDisabled)
}

func TestAddThenEditThenCloseLeavesFieldsVisible(t *testing.T) {
	m := New([]string{"BTCUSDT"})
	m.OpenAdd()
	m.OpenEdit("BTCUSDT", ptr(60000), ptr(70000))
	m.Close()

	assert.Equal(t, ModeClosed, m.Mode())
	assert.Empty(t, m.EditSymbol())
	assertAllFieldsReset(t, m)

	m.OpenAdd()
	assert.True(t, m.Field(FieldQuantity).Visible)
	assert.True(t, m.Field(FieldPrice).Visible)
	assert.True(t, m.Field(FieldSymbol).Enabled)
	assert.Empty(t, m.Field(FieldStopLoss).Value)
}

func TestCloseAfterAddResetsFields(t *testing.T) {
	m := New(nil)
	m.OpenAdd()
	require.NoError(t, m.SetValue(FieldQuantity, "1"))
	m.Close()
	assertAllFieldsReset(t, m)
	assert.Empty(t, m.Field(FieldQuantity).Value)
}

func TestSubmitAdd(t *testing.T) {
	m := New([]string{"BTCUSDT"})
	m.OpenAdd()
	require.NoError(t, m.SetValue(FieldQuantity, "0.01"))
	require.NoError(t, m.SetValue(FieldPrice, "65000.5"))

	sub, err := m.Submit()
	require.NoError(t, err)
	assert.Equal(t, ModeAdd, sub.Mode)
	require.NotNil(t, sub.Create)
	assert.Nil(t, sub.Update)
	assert.Equal(t, "BTCUSDT", sub.Create.Symbol)
	assert.Equal(t, 0.01, sub.Create.Quantity)
	assert.Equal(t, 65000.5, sub.Create.EntryPrice)

	// 提交不关闭弹窗，等后端确认
	assert.True(t, m.IsOpen())
}

func TestSubmitAddValidation(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		quantity string
		price    string
	}{
		{"missing symbol", " ", "1", "1"},
		{"bad quantity", "BTCUSDT", "abc", "1"},
		{"zero quantity", "BTCUSDT", "0", "1"},
		{"negative price", "BTCUSDT", "1", "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil)
			m.OpenAdd()
			require.NoError(t, m.SetValue(FieldSymbol, tt.symbol))
			require.NoError(t, m.SetValue(FieldQuantity, tt.quantity))
			require.NoError(t, m.SetValue(FieldPrice, tt.price))
			_, err := m.Submit()
			assert.Error(t, err)
		})
	}
}

func TestSubmitEdit(t *testing.T) {
	m := New(nil)
	m.OpenEdit("ETHUSDT", nil, nil)
	require.NoError(t, m.SetValue(FieldStopLoss, "2900"))

	sub, err := m.Submit()
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", sub.Symbol)
	require.NotNil(t, sub.Update)
	require.NotNil(t, sub.Update.StopLoss)
	assert.Equal(t, 2900.0, *sub.Update.StopLoss)
	assert.Nil(t, sub.Update.TakeProfit)

	require.NoError(t, m.SetValue(FieldTakeProfit, "x"))
	_, err = m.Submit()
	assert.Error(t, err)
}

func TestSubmitClosed(t *testing.T) {
	_, err := New(nil).Submit()
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestFocusSkipsHiddenFields(t *testing.T) {
	m := New(nil)
	m.OpenEdit("BTCUSDT", nil, nil)
	m.FocusNext()
	assert.Equal(t, FieldTakeProfit, m.Focus())
	m.FocusNext()
	assert.Equal(t, FieldStopLoss, m.Focus())
	m.FocusPrev()
	assert.Equal(t, FieldTakeProfit, m.Focus())

	m.OpenAdd()
	assert.Equal(t, FieldSymbol, m.Focus())
	m.FocusPrev()
	assert.Equal(t, FieldPrice, m.Focus())
}

func TestInputAndBackspace(t *testing.T) {
	m := New(nil)
	m.OpenAdd()
	m.Input("btc")
	m.Input("usdt")
	assert.Equal(t, "BTCUSDT", m.Field(FieldSymbol).Value)
	m.Backspace()
	assert.Equal(t, "BTCUSD", m.Field(FieldSymbol).Value)

	m.Close()
	m.Input("1")
	assert.Empty(t, m.Field(FieldSymbol).Value)
}

func TestCycleSymbol(t *testing.T) {
	m := New([]string{"BTCUSDT", "ETHUSDT", "BNBUSDT"})
	m.OpenAdd()
	m.CycleSymbol(1)
	assert.Equal(t, "ETHUSDT", m.Field(FieldSymbol).Value)
	m.CycleSymbol(-2)
	assert.Equal(t, "BNBUSDT", m.Field(FieldSymbol).Value)

	m.OpenEdit("SOLUSDT", nil, nil)
	m.CycleSymbol(1)
	assert.Equal(t, "SOLUSDT", m.Field(FieldSymbol).Value)
}

func TestSessionAdvancesOnEveryOpen(t *testing.T) {
	m := New([]string{"BTCUSDT"})
	assert.Equal(t, 0, m.Session())

	m.OpenAdd()
	require.NoError(t, m.SetValue(FieldQuantity, "1"))
	require.NoError(t, m.SetValue(FieldPrice, "1"))
	sub, err := m.Submit()
	require.NoError(t, err)
	assert.Equal(t, 1, sub.Session)

	m.Close()
	m.OpenEdit("BTCUSDT", nil, nil)
	assert.Equal(t, 2, m.Session())
	assert.NotEqual(t, sub.Session, m.Session())
}
