// Package application は奨学金応募の審査ステータスを管理する。
//
// 管理者がステータスを変更すると、変更を保存したうえで応募者へ通知を送る。
// 通知の失敗は記録するだけで、保存したステータスは取り消さない。
package application
