package mailer

import (
	"bytes"
	"html/template"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f5f5f4;font-family:Helvetica,Arial,sans-serif;">
  <div style="max-width:480px;margin:32px auto;background:#ffffff;border-radius:8px;padding:32px;">
    <h2 style="margin-top:0;color:#1c1917;">focusaint</h2>
    <p style="color:#44403c;">Hello {{.Name}}!</p>
    <p style="color:#44403c;">Use this code to verify your email address:</p>
    <p style="font-size:32px;letter-spacing:8px;font-weight:bold;color:#1c1917;text-align:center;margin:24px 0;">{{.Code}}</p>
    <p style="color:#78716c;font-size:14px;">The code expires in 10 minutes. If you didn't request it, you can safely ignore this email.</p>
  </div>
</body>
</html>`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f5f5f4;font-family:Helvetica,Arial,sans-serif;">
  <div style="max-width:480px;margin:32px auto;background:#ffffff;border-radius:8px;padding:32px;">
    <h2 style="margin-top:0;color:#1c1917;">focusaint</h2>
    <p style="color:#44403c;">Hello {{.Name}}!</p>
    <p style="color:#44403c;">You haven't logged a focus session today.{{if gt .CurrentStreak 0}} A quick session keeps your {{.CurrentStreak}}-day streak alive.{{end}}</p>
    <p style="color:#78716c;font-size:14px;">You can adjust reminder emails in your profile settings.</p>
  </div>
</body>
</html>`))

func renderOTPEmail(name, code string) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Name string
		Code string
	}{displayName(name), code})
	return buf.String(), err
}

func renderReminderEmail(name string, currentStreak int) (string, error) {
	var buf bytes.Buffer
	err := reminderTemplate.Execute(&buf, struct {
		Name          string
		CurrentStreak int
	}{displayName(name), currentStreak})
	return buf.String(), err
}
