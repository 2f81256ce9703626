package util

import (
	"context"
	"errors"
	"time"
)

// OpsAlerter 通过企业微信/钉钉机器人 webhook 推送运维告警
type OpsAlerter struct {
	webhook string
	prefix  string
}

func NewOpsAlerter(webhook, env string) *OpsAlerter {
	return &OpsAlerter{webhook: webhook, prefix: "[" + env + "] "}
}

type TextContent struct {
	Content string `json:"content"`
}

type RobotMessage struct {
	MsgType string      `json:"msgtype"`
	Text    TextContent `json:"text"`
}

// Send webhook 为空时直接忽略
func (a *OpsAlerter) Send(ctx context.Context, message string) error {
	if a == nil || a.webhook == "" {
		return nil
	}
	result, err := HttpPost(ctx, a.webhook, &RobotMessage{
		MsgType: "text",
		Text:    TextContent{Content: a.prefix + message},
	}, 3*time.Second)
	if err != nil {
		return err
	}
	if result.Get("errcode").Int() == 0 {
		return nil
	}
	return errors.New(result.Get("errmsg").String())
}
