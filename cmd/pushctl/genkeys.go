package main

import (
	"fmt"
	"io"

	"github.com/nao1215/beasiswa/internal/push"
)

// GenKeys はVAPID鍵ペアを生成する。
type GenKeys struct {
	out io.Writer
}

// Execute は鍵ペアを.envにそのまま貼り付けられる形式で出力する。
func (x *GenKeys) Execute(_ []string) error {
	priv, pub, err := push.GenerateVAPIDKeys()
	if err != nil {
		return err
	}
	fmt.Fprintf(x.out, "VAPID_PUBLIC_KEY=%s\n", pub)
	fmt.Fprintf(x.out, "VAPID_PRIVATE_KEY=%s\n", priv)
	return nil
}
