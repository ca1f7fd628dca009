package application

import "fmt"

// Status は応募の審査ステータス。
type Status string

// 審査ステータス。
const (
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusInterview Status = "interview"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
)

// ResultURL は審査結果を確認する学生向けページ。通知のクリック先になる。
const ResultURL = "/student/scholarship"

// Valid は既知のステータスかどうかを返す。
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusInterview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Message はステータス変更を応募者へ知らせる通知のタイトルと本文を返す。
// 文面は学生向けポータルに合わせてインドネシア語。
func (s Status) Message(scholarship string) (title, body string) {
	switch s {
	case StatusSubmitted:
		return "Lamaran diterima", fmt.Sprintf("Lamaran beasiswa %s telah kami terima.", scholarship)
	case StatusInReview:
		return "Lamaran sedang ditinjau", fmt.Sprintf("Lamaran beasiswa %s sedang ditinjau oleh panitia.", scholarship)
	case StatusInterview:
		return "Selamat", fmt.Sprintf("Lanjut wawancara untuk beasiswa %s.", scholarship)
	case StatusAccepted:
		return "Selamat", fmt.Sprintf("Anda diterima sebagai penerima beasiswa %s.", scholarship)
	case StatusRejected:
		return "Hasil seleksi", fmt.Sprintf("Mohon maaf, lamaran beasiswa %s belum dapat kami terima.", scholarship)
	}
	return "Status lamaran diperbarui", fmt.Sprintf("Status lamaran beasiswa %s: %s.", scholarship, string(s))
}
