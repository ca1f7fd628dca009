package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/beasiswa/internal/notification"
	"github.com/nao1215/beasiswa/pkg/httpclient"
	"github.com/nao1215/beasiswa/pkg/middleware"
)

// Send は通知作成APIを呼び出して通知を送る。
type Send struct {
	Server    string        `short:"s" long:"server" env:"PUSHCTL_SERVER" default:"http://localhost:8086/api/v1" description:"API base URL of the portal"`
	Token     string        `long:"token" env:"PUSHCTL_TOKEN" description:"Admin access token. If omitted, one is signed with --secret"`
	Secret    string        `long:"secret" env:"JWT_SECRET" description:"JWT secret used to sign an admin token"`
	Recipient int64         `short:"r" long:"recipient" required:"true" description:"Recipient user ID"`
	Title     string        `short:"t" long:"title" required:"true" description:"Notification title"`
	Body      string        `short:"b" long:"body" required:"true" description:"Notification body"`
	URL       string        `short:"u" long:"url" description:"Page opened when the notification is clicked"`
	Timeout   time.Duration `long:"timeout" default:"30s" description:"Request timeout"`

	out  io.Writer
	doer httpclient.Doer
}

// Execute は通知を送信し、配信結果を出力する。
func (x *Send) Execute(_ []string) error {
	token, err := x.token()
	if err != nil {
		return err
	}

	opts := []httpclient.Option{httpclient.WithTimeout(x.Timeout)}
	if x.doer != nil {
		opts = append(opts, httpclient.WithDoer(x.doer))
	}
	client := httpclient.New(x.Server, opts...)

	ctx, cancel := context.WithTimeout(httpclient.WithToken(context.Background(), token), x.Timeout)
	defer cancel()

	var report notification.Report
	err = client.PostJSON(ctx, "/internal/notifications", notification.DispatchRequest{
		RecipientID: x.Recipient,
		Title:       x.Title,
		Body:        x.Body,
		URL:         x.URL,
	}, &report)
	if err != nil {
		return fmt.Errorf("通知の送信に失敗: %w", err)
	}

	fmt.Fprintf(x.out, "id=%s subscriptions=%d delivered=%d skipped=%d failed=%d\n",
		report.NotificationID, report.Subscriptions, report.Delivered, report.Skipped, report.Failed)
	return nil
}

// token は送信に使うアクセストークンを返す。
func (x *Send) token() (string, error) {
	if x.Token != "" {
		return x.Token, nil
	}
	if x.Secret == "" {
		return "", errors.New("--token か --secret のいずれかを指定してください")
	}
	return middleware.GenerateJWT(x.Secret, "pushctl", middleware.RoleAdmin)
}
