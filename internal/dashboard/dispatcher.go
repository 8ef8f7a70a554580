package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/metrics"
	"github.com/TaraJura/trade-bot/internal/modal"
	"github.com/TaraJura/trade-bot/internal/notify"
	"github.com/TaraJura/trade-bot/internal/scheduler"
	"github.com/TaraJura/trade-bot/internal/view"
)

var dispatchLog = logrus.WithField("module", "dispatcher")

// Command 用户命令
type Command string

const (
	CommandStart          Command = "start"
	CommandStop           Command = "stop"
	CommandSaveConfig     Command = "save_config"
	CommandCreatePosition Command = "create_position"
	CommandUpdatePosition Command = "update_position"
	CommandClosePosition  Command = "close_position"
)

// FallbackMessage success=false 且后端没给 message 时的提示
const FallbackMessage = "Request failed"

type commandText struct {
	success string
	failure string
}

var commandTexts = map[Command]commandText{
	CommandStart:          {"Bot started successfully", "Error starting bot"},
	CommandStop:           {"Bot stopped successfully", "Error stopping bot"},
	CommandSaveConfig:     {"Configuration saved successfully", "Error saving configuration"},
	CommandCreatePosition: {"Position created successfully", "Error creating position"},
	CommandUpdatePosition: {"Position updated successfully", "Error updating position"},
	CommandClosePosition:  {"Position closed successfully", "Error closing position"},
}

// Outcome 一次命令的结果，由 State.ApplyOutcome 在事件循环里应用
type Outcome struct {
	Command Command
	OK      bool
	Message string
	Kind    notify.Kind
	Symbol  string

	// Controls 后端确认后乐观切换的启停按钮；nil 表示不变
	Controls *view.Controls
	// CloseModal 持仓弹窗提交成功后关闭
	CloseModal bool
	// ModalSession 发起提交的那次弹窗；弹窗已重新打开时不再关闭
	ModalSession int
}

// Dispatcher 发送用户命令，只在后端确认后才改变界面状态
type Dispatcher struct {
	api     API
	refresh Refresher
}

// NewDispatcher refresh 可为 nil（不做即时刷新）
func NewDispatcher(api API, refresh Refresher) *Dispatcher {
	return &Dispatcher{api: api, refresh: refresh}
}

// Start POST /api/start
func (d *Dispatcher) Start(ctx context.Context, req domain.StartRequest) Outcome {
	res, err := d.api.Start(ctx, req)
	out := d.outcome(CommandStart, res, err)
	if out.OK {
		c := view.ControlsFor(true)
		out.Controls = &c
		d.trigger(scheduler.ResourceStatus)
	}
	return out
}

// Stop POST /api/stop
func (d *Dispatcher) Stop(ctx context.Context) Outcome {
	res, err := d.api.Stop(ctx)
	out := d.outcome(CommandStop, res, err)
	if out.OK {
		c := view.ControlsFor(false)
		out.Controls = &c
		d.trigger(scheduler.ResourceStatus)
	}
	return out
}

// ConfigForm 配置表单的原始输入；止损/止盈为整数百分比
type ConfigForm struct {
	MaxPositionSize   string
	StopLossPercent   string
	TakeProfitPercent string
}

// NormalizeConfig 把百分比换算为小数："5" -> 0.05
func NormalizeConfig(form ConfigForm) (domain.ConfigRequest, error) {
	var req domain.ConfigRequest

	var err error
	// 仓位上限本身就是小数，不做百分比换算
	if req.MaxPositionSize, err = view.ParseNumber(form.MaxPositionSize); err != nil {
		return req, errors.New("max position size must be a number")
	}
	if req.StopLossPercentage, err = view.PercentToFraction(form.StopLossPercent); err != nil {
		return req, errors.New("stop loss must be a number")
	}
	if req.TakeProfitPercentage, err = view.PercentToFraction(form.TakeProfitPercent); err != nil {
		return req, errors.New("take profit must be a number")
	}
	if req.MaxPositionSize <= 0 || req.StopLossPercentage < 0 || req.TakeProfitPercentage < 0 {
		return req, errors.New("values must not be negative and max position size must be positive")
	}
	return req, nil
}

// SaveConfig POST /api/config
func (d *Dispatcher) SaveConfig(ctx context.Context, form ConfigForm) Outcome {
	req, err := NormalizeConfig(form)
	if err != nil {
		return d.outcome(CommandSaveConfig, nil, err)
	}
	res, err := d.api.SaveConfig(ctx, req)
	return d.outcome(CommandSaveConfig, res, err)
}

// SubmitPosition 新增走 POST，编辑走 PUT；成功后关闭弹窗并刷新持仓
func (d *Dispatcher) SubmitPosition(ctx context.Context, sub modal.Submission) Outcome {
	var (
		cmd Command
		res *domain.CommandResult
		err error
	)
	switch {
	case sub.Create != nil:
		cmd = CommandCreatePosition
		res, err = d.api.CreatePosition(ctx, *sub.Create)
	case sub.Update != nil:
		cmd = CommandUpdatePosition
		res, err = d.api.UpdatePosition(ctx, sub.Symbol, *sub.Update)
	default:
		return d.outcome(CommandCreatePosition, nil, errors.New("empty submission"))
	}

	out := d.outcome(cmd, res, err)
	out.Symbol = sub.Symbol
	out.ModalSession = sub.Session
	if out.OK {
		out.CloseModal = true
		d.trigger(scheduler.ResourcePositions)
	}
	return out
}

// ClosePosition DELETE /api/positions/{symbol}，调用方负责先让用户确认
//
// 成功后持仓和统计各刷新一次（两个独立请求）。
func (d *Dispatcher) ClosePosition(ctx context.Context, symbol string) Outcome {
	res, err := d.api.ClosePosition(ctx, symbol)
	out := d.outcome(CommandClosePosition, res, err)
	out.Symbol = symbol
	if out.OK {
		d.trigger(scheduler.ResourcePositions)
		d.trigger(scheduler.ResourceStatistics)
	}
	return out
}

// ConfirmClosePrompt 平仓确认提示
func ConfirmClosePrompt(symbol string) string {
	return fmt.Sprintf("Are you sure you want to close the position for %s?", symbol)
}

func (d *Dispatcher) outcome(cmd Command, res *domain.CommandResult, err error) Outcome {
	text := commandTexts[cmd]
	out := Outcome{Command: cmd, Kind: notify.KindError}

	switch {
	case err != nil:
		dispatchLog.Errorf("%s 失败: %v", cmd, err)
		out.Message = text.failure + ": " + err.Error()
	case res == nil:
		out.Message = text.failure + ": empty response"
	case !res.Success:
		out.Message = strings.TrimSpace(res.Message)
		if out.Message == "" {
			out.Message = FallbackMessage
		}
		dispatchLog.Warnf("%s 被后端拒绝: %s", cmd, out.Message)
	default:
		out.OK = true
		out.Kind = notify.KindSuccess
		out.Message = text.success
		dispatchLog.Infof("%s 成功", cmd)
	}
	metrics.RecordCommand(string(cmd), out.OK)
	return out
}

func (d *Dispatcher) trigger(resource scheduler.Resource) {
	if d.refresh == nil {
		return
	}
	if err := d.refresh.Trigger(resource); err != nil {
		dispatchLog.Warnf("触发 %s 刷新失败: %v", resource, err)
	}
}
