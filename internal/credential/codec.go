// Package credential はQRクレデンシャルのエンコード・デコードを提供する。
//
// クレデンシャルの実体はJSONペイロード{user_id, event_id, email, timestamp}
// であり、エンコードはそのUTF-8 JSON表現をQRコード画像（PNGデータURL）に
// 変換する。デコードはスキャナーが読み取った「テキスト」を対象とする。
// 画像からテキストへの復号は汎用のバーコードリーダー（外部コラボレーター）の
// 責務であり、本パッケージは扱わない。
// ラウンドトリップ則: Decode(EncodeText(p)) == p。
package credential

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/xarrijorge/kolokwa/internal/model"
)

// qrImageSize は生成するQR画像の一辺のピクセル数。
// 汎用リーダーで確実にスキャンできるサイズとして256pxを使用する。
const qrImageSize = 256

// Payload はQRクレデンシャルのペイロードを表す。
// Timestampは発行時刻のエポックミリ秒。発行後は不変。
type Payload struct {
	UserID    string `json:"user_id"`
	EventID   string `json:"event_id"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
}

// EncodeText はペイロードのJSON表現を返す。
// 同一ペイロードに対して常に同一のバイト列を返す（決定的）。
func EncodeText(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal credential payload: %w", err)
	}
	return string(data), nil
}

// Encode はペイロードをQRコードPNGのデータURLにエンコードする。
// 誤り訂正レベルはMedium（汎用リーダーでのスキャンに十分）。
func Encode(p Payload) (string, error) {
	text, err := EncodeText(p)
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(text, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// Decode はスキャン済みテキストをペイロードに復号する。
// JSONとして解析できない、または必須フィールド（user_id, event_id, email）が
// 欠けている場合はMalformedPayloadエラーを返す。
func Decode(scannedText string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(scannedText), &p); err != nil {
		return nil, model.NewMalformedPayloadError("Invalid QR code data")
	}

	if p.UserID == "" || p.EventID == "" || p.Email == "" {
		return nil, model.NewMalformedPayloadError("Invalid QR code format")
	}

	return &p, nil
}
