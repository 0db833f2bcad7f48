package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PasswordResetData fills the password reset message.
type PasswordResetData struct {
	AppName string
	Email   string
	Link    string
}

// PasswordReset is the Portuguese password reset message.
func PasswordReset(d PasswordResetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(d.AppName, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return write(w,
				"<h1>Redefinir a sua palavra-passe</h1>",
				"<p>Recebemos um pedido para redefinir a palavra-passe da conta <strong>",
				templ.EscapeString(d.Email),
				"</strong>.</p>",
				`<p><a href="`, templ.EscapeString(string(templ.URL(d.Link))), `" style="`, buttonStyle, `">Definir nova palavra-passe</a></p>`,
				"<p>Se não fez este pedido, ignore este email. A sua palavra-passe continua a mesma.</p>",
			)
		})).Render(ctx, w)
	})
}

const buttonStyle = "display:inline-block;padding:12px 20px;background:#1d4ed8;color:#fff;border-radius:6px;text-decoration:none"

func layout(appName string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!doctype html><html lang="pt"><head><meta charset="utf-8"><title>`,
			templ.EscapeString(appName),
			`</title></head><body style="font-family:sans-serif;color:#111">`,
		); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w,
			`<hr><p style="color:#666;font-size:12px">`,
			templ.EscapeString(appName),
			`</p></body></html>`,
		)
	})
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}
