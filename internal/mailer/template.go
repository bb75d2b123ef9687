package mailer

import "github.com/simplebytes/contact-relay/internal/contact"

// TemplateComposer delegates layout and escaping to remote templates. It
// only chooses the template and supplies raw variables.
type TemplateComposer struct {
	ConfirmationID string
	AdminID        string
}

// Confirmation addresses the confirmation template to the submitter.
func (c TemplateComposer) Confirmation(in contact.Inquiry) contact.Notification {
	return contact.Notification{
		Kind:         contact.KindConfirmation,
		SubmissionID: in.ID,
		To:           in.Email,
		TemplateID:   c.ConfirmationID,
		Variables:    variables(in),
	}
}

// AdminAlert addresses the admin template to adminEmail with replies going
// to the submitter.
func (c TemplateComposer) AdminAlert(in contact.Inquiry, adminEmail string) contact.Notification {
	return contact.Notification{
		Kind:         contact.KindAdmin,
		SubmissionID: in.ID,
		To:           adminEmail,
		ReplyTo:      in.Email,
		TemplateID:   c.AdminID,
		Variables:    variables(in),
	}
}

func variables(in contact.Inquiry) map[string]string {
	return map[string]string{
		"name":    in.Name,
		"email":   in.Email,
		"project": in.Project,
		"topic":   in.Topic,
		"message": in.Message,
	}
}
