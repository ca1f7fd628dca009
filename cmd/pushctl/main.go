// 通知サービスの運用ツール。
// VAPID鍵の生成と、通知作成APIを使った手動送信を行う。
package main

import (
	"log"
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	parser := flags.NewParser(nil, flags.Default)

	_, err := parser.AddCommand("genkeys",
		"generate a VAPID key pair",
		"The genkeys command prints a new VAPID key pair as environment variable assignments.",
		&GenKeys{out: os.Stdout})
	if err != nil {
		log.Fatal(err)
	}
	_, err = parser.AddCommand("send",
		"send a notification",
		"The send command stores a notification for the recipient and pushes it to all of their subscriptions.",
		&Send{out: os.Stdout})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
}
