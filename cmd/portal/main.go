// 奨学金ポータルの通知サービスのエントリポイント。
// 審査ステータスの変更を通知として保存し、学生の端末へWeb Pushで配信する。
package main

import (
	"log"

	"github.com/nao1215/beasiswa/internal/application"
	"github.com/nao1215/beasiswa/internal/config"
	"github.com/nao1215/beasiswa/internal/database"
	"github.com/nao1215/beasiswa/internal/logging"
	"github.com/nao1215/beasiswa/internal/notification"
	"github.com/nao1215/beasiswa/internal/push"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	logger, err := logging.New(cfg.Log, "portal")
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}

	db, err := database.Open(cfg.DB, logger)
	if err != nil {
		logger.WithError(err).Fatal("データベースの初期化に失敗")
	}
	defer db.Close()

	if cfg.Push.VAPIDPrivateKey == "" {
		logger.Warn("VAPID鍵が設定されていないため、プッシュ配信は失敗します（pushctl genkeysで生成してください）")
	}
	sender := push.NewWebPushSender(cfg.Push, nil)

	server := notification.NewServer(cfg, db, sender, logger)
	application.NewHandler(application.NewStore(db), server.Dispatcher(), logger).Register(server.AdminGroup())

	logger.WithField("port", cfg.Port).Info("通知サービスを起動します")
	if err := server.Run(); err != nil {
		logger.WithError(err).Fatal("通知サービスの起動に失敗")
	}
}
