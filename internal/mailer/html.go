package mailer

import (
	"strings"

	"github.com/simplebytes/contact-relay/internal/contact"
)

const confirmationSubject = "We received your message - Simple Bytes"

// htmlEscaper covers the five characters that matter inside element
// content and double- or single-quoted attributes.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes s for interpolation into the email layouts.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// HTMLComposer renders both notifications server side. Every user-supplied
// value is escaped before interpolation.
type HTMLComposer struct{}

// Confirmation renders the receipt sent to the submitter.
func (HTMLComposer) Confirmation(in contact.Inquiry) contact.Notification {
	return contact.Notification{
		Kind:         contact.KindConfirmation,
		SubmissionID: in.ID,
		To:           in.Email,
		Subject:      confirmationSubject,
		HTML:         interpolate(confirmationLayout, in),
	}
}

// AdminAlert renders the alert sent to the site owner. Replies go to the
// submitter.
func (HTMLComposer) AdminAlert(in contact.Inquiry, adminEmail string) contact.Notification {
	return contact.Notification{
		Kind:         contact.KindAdmin,
		SubmissionID: in.ID,
		To:           adminEmail,
		ReplyTo:      in.Email,
		Subject:      AdminSubject(in),
		HTML:         interpolate(adminLayout, in),
	}
}

// AdminSubject is "[<project>] <topic> from <name>". Subjects are plain
// text headers, so nothing is escaped.
func AdminSubject(in contact.Inquiry) string {
	return "[" + in.Project + "] " + in.Topic + " from " + in.Name
}

func interpolate(layout string, in contact.Inquiry) string {
	return strings.NewReplacer(
		"{{name}}", EscapeHTML(in.Name),
		"{{email}}", EscapeHTML(in.Email),
		"{{project}}", EscapeHTML(in.Project),
		"{{topic}}", EscapeHTML(in.Topic),
		"{{message}}", EscapeHTML(in.Message),
	).Replace(layout)
}

const bodyStyle = `font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #171717; max-width: 600px; margin: 0 auto; padding: 20px;`

const confirmationLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="` + bodyStyle + `">
    <div style="border-bottom: 1px solid #e5e5e5; padding-bottom: 20px; margin-bottom: 20px;">
        <h1 style="font-size: 24px; font-weight: 600; margin: 0;">Simple Bytes</h1>
    </div>

    <p>Hi {{name}},</p>

    <p>Thank you for reaching out! We've received your message and will get back to you as soon as possible.</p>

    <div style="background: #f5f5f5; border-radius: 8px; padding: 20px; margin: 20px 0;">
        <p style="margin: 0 0 10px 0;"><strong>Project:</strong> {{project}}</p>
        <p style="margin: 0 0 10px 0;"><strong>Topic:</strong> {{topic}}</p>
        <p style="margin: 0 0 10px 0;"><strong>Your message:</strong></p>
        <p style="margin: 0; white-space: pre-wrap;">{{message}}</p>
    </div>

    <p>Best regards,<br>The Simple Bytes Team</p>

    <div style="border-top: 1px solid #e5e5e5; padding-top: 20px; margin-top: 20px; font-size: 12px; color: #737373;">
        <p style="margin: 0;">This is an automated confirmation. Please do not reply to this email.</p>
        <p style="margin: 10px 0 0 0;"><a href="https://simplebytes.com" style="color: #525252;">simplebytes.com</a></p>
    </div>
</body>
</html>
`

const adminLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="` + bodyStyle + `">
    <div style="border-bottom: 1px solid #e5e5e5; padding-bottom: 20px; margin-bottom: 20px;">
        <h1 style="font-size: 24px; font-weight: 600; margin: 0;">New Contact Form Submission</h1>
    </div>

    <div style="background: #f5f5f5; border-radius: 8px; padding: 20px; margin-bottom: 20px;">
        <p style="margin: 0 0 10px 0;"><strong>Name:</strong> {{name}}</p>
        <p style="margin: 0 0 10px 0;"><strong>Email:</strong> <a href="mailto:{{email}}">{{email}}</a></p>
        <p style="margin: 0 0 10px 0;"><strong>Project:</strong> {{project}}</p>
        <p style="margin: 0;"><strong>Topic:</strong> {{topic}}</p>
    </div>

    <div style="background: #fafafa; border: 1px solid #e5e5e5; border-radius: 8px; padding: 20px;">
        <p style="margin: 0 0 10px 0;"><strong>Message:</strong></p>
        <p style="margin: 0; white-space: pre-wrap;">{{message}}</p>
    </div>

    <p style="margin-top: 20px; font-size: 12px; color: #737373;">
        Reply directly to this email to respond to {{name}}.
    </p>
</body>
</html>
`
