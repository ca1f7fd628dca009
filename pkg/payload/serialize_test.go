package payload

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestEncode はEncode関数の出力形式を検証する。
func TestEncode(t *testing.T) {
	t.Parallel()

	t.Run("全フィールドがsnake_caseのキーで出力されること", func(t *testing.T) {
		t.Parallel()

		data, err := Encode(Push{
			Title:          "Selamat",
			Body:           "Lanjut wawancara",
			URL:            "/student/scholarship",
			NotificationID: "notif-1",
		})
		if err != nil {
			t.Fatalf("Encode()でエラーが発生: %v", err)
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("JSONのデコードに失敗: %v", err)
		}
		want := map[string]string{
			"title":           "Selamat",
			"body":            "Lanjut wawancara",
			"url":             "/student/scholarship",
			"notification_id": "notif-1",
		}
		for k, v := range want {
			if m[k] != v {
				t.Errorf("%s = %v, want %q", k, m[k], v)
			}
		}
	})

	t.Run("URLが空の場合はキー自体が省略されること", func(t *testing.T) {
		t.Parallel()

		data, err := Encode(Push{Title: "t", Body: "b", NotificationID: "n"})
		if err != nil {
			t.Fatalf("Encode()でエラーが発生: %v", err)
		}

		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("JSONのデコードに失敗: %v", err)
		}
		if _, ok := m["url"]; ok {
			t.Errorf("urlキーが存在する: %v", m)
		}
	})
}

// TestDecode はDecode関数を検証する。
func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    Push
	}{
		{
			name:  "正常なペイロードをデコードできること",
			input: `{"title":"a","body":"b","url":"/x","notification_id":"n1"}`,
			want:  Push{Title: "a", Body: "b", URL: "/x", NotificationID: "n1"},
		},
		{
			name:  "notification_idがなくてもデコードできること",
			input: `{"title":"a","body":"b"}`,
			want:  Push{Title: "a", Body: "b"},
		},
		{
			name:    "不正なJSONはエラーになること",
			input:   `{"title":`,
			wantErr: true,
		},
		{
			name:    "タイトルがない場合はエラーになること",
			input:   `{"body":"b"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("エラーが返されなかった")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode()でエラーが発生: %v", err)
			}
			if *got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", *got, tt.want)
			}
		})
	}

	t.Run("タイトル欠落はErrEmptyTitleであること", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte(`{"body":"b"}`))
		if !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("err = %v, want ErrEmptyTitle", err)
		}
	})
}

// TestPushMetadata はペイロードからメタデータを取り出せることを検証する。
func TestPushMetadata(t *testing.T) {
	t.Parallel()

	p := Push{Title: "t", Body: "b", URL: "/u", NotificationID: "n"}
	got := p.Metadata()
	if got.URL != "/u" || got.NotificationID != "n" {
		t.Errorf("Metadata() = %+v", got)
	}
}
