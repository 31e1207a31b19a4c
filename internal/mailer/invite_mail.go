package mailer

import "fmt"

// BuildInviteMail は招待メールの件名とHTML本文を組み立てる。
// eventTitleはサニタイズ済みであること（HTML本文に直接埋め込まれる）。
// 本文には{baseURL}/verify/{token}形式の登録完了リンクを含める。
func BuildInviteMail(from, to, eventTitle, inviteURL string) Message {
	subject := fmt.Sprintf("You're invited to %s", eventTitle)

	html := fmt.Sprintf(`
        <h1>Welcome to KoloKwa!</h1>
        <p>You've been invited to join the event: <strong>%s</strong></p>
        <p>Click the link below to complete your registration:</p>
        <a href="%s">Complete Registration</a>
        <p>This link will expire in 7 days.</p>
      `, eventTitle, inviteURL)

	return Message{
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    html,
	}
}
